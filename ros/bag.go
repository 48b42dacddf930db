// Package ros reads ROS bags and turns their messages into XVIZ frames.
package ros

import (
	"encoding/json"
	"io"
	"os"

	"github.com/edaniels/gobag/rosbag"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// ReadBag reads the contents of a rosbag into a gobag data structure.
func ReadBag(filename string) (*rosbag.RosBag, error) {
	//nolint:gosec
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open input file")
	}
	defer utils.UncheckedErrorFunc(f.Close)

	rb := rosbag.NewRosBag()
	if err := rb.Read(f); err != nil {
		return nil, errors.Wrapf(err, "unable to read ros bag %s", filename)
	}
	return rb, nil
}

// TimeFilter keeps messages recorded between startTime and endTime, in nanoseconds. A zero
// bound keeps everything.
func TimeFilter(startTime, endTime int64) func(int64) bool {
	if startTime == 0 || endTime == 0 {
		return func(int64) bool { return true }
	}
	return func(timestamp int64) bool {
		return timestamp >= startTime && timestamp <= endTime
	}
}

// TopicFilter keeps the given topics. No topics keeps everything.
func TopicFilter(topics ...string) func(string) bool {
	if len(topics) == 0 {
		return func(string) bool { return true }
	}
	keep := make(map[string]bool, len(topics))
	for _, topic := range topics {
		keep[topic] = true
	}
	return func(topic string) bool {
		return keep[topic]
	}
}

// AllMessagesForTopic returns all messages for a specific topic in the ros bag.
func AllMessagesForTopic(rb *rosbag.RosBag, topic string) ([]map[string]interface{}, error) {
	if err := rb.ParseTopicsToJSON("", TimeFilter(0, 0), TopicFilter(topic), false); err != nil {
		return nil, errors.Wrapf(err, "error while parsing bag to JSON")
	}

	msgs := rb.TopicsAsJSON[topic]
	if msgs == nil {
		return nil, errors.Wrapf(ErrTopicNotFound, "%s", topic)
	}
	return readJSONLines(msgs)
}

type byteReader interface {
	ReadBytes(delim byte) ([]byte, error)
}

func readJSONLines(r byteReader) ([]map[string]interface{}, error) {
	all := []map[string]interface{}{}
	for {
		data, err := r.ReadBytes('\n')
		if len(data) > 0 {
			message := map[string]interface{}{}
			if jsonErr := json.Unmarshal(data, &message); jsonErr != nil {
				return nil, errors.Wrap(jsonErr, "decoding bag message")
			}
			all = append(all, message)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
	}
	return all, nil
}

// DecodeMessages decodes generic bag messages into typed messages.
func DecodeMessages[T any](raw []map[string]interface{}) ([]T, error) {
	out := make([]T, 0, len(raw))
	for i, msg := range raw {
		var typed T
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: &typed})
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(msg); err != nil {
			return nil, errors.Wrapf(err, "decoding message %d", i)
		}
		out = append(out, typed)
	}
	return out, nil
}

// TopicMessages reads and decodes every message of topic.
func TopicMessages[T any](rb *rosbag.RosBag, topic string) ([]T, error) {
	raw, err := AllMessagesForTopic(rb, topic)
	if err != nil {
		return nil, err
	}
	return DecodeMessages[T](raw)
}
