package format

import (
	"bytes"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"go.viam.com/xviz/message"
	"go.viam.com/xviz/packer"
	"go.viam.com/xviz/tree"
)

var protobufMagic = [4]byte{'P', 'B', 'E', '1'}

func encodeProtobuf(env message.Envelope) ([]byte, error) {
	numbered, err := enumsToNumbers(env.Tree())
	if err != nil {
		return nil, err
	}
	// structpb only understands generic JSON values
	plain, err := tree.Rewrite(numbered, func(_ string, leaf any) (any, bool, error) {
		if packer.IsArray(leaf) {
			return packer.ToNumbers(leaf), true, nil
		}
		return nil, false, nil
	})
	if err != nil {
		return nil, err
	}
	value, err := structpb.NewValue(plain)
	if err != nil {
		return nil, errors.Wrap(err, "converting to protobuf value")
	}
	body, err := proto.MarshalOptions{Deterministic: true}.Marshal(value)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling protobuf")
	}
	return append(protobufMagic[:], body...), nil
}

func decodeProtobuf(b []byte) (any, error) {
	if !bytes.HasPrefix(b, protobufMagic[:]) {
		return nil, errors.New("missing PBE1 magic")
	}
	var value structpb.Value
	if err := proto.Unmarshal(b[len(protobufMagic):], &value); err != nil {
		return nil, errors.Wrap(err, "unmarshaling protobuf")
	}
	return enumsToNames(value.AsInterface())
}
