package schema

import (
	"encoding/json"
	"testing"

	"go.viam.com/test"
)

func TestNames(t *testing.T) {
	test.That(t, Names(), test.ShouldResemble, []string{"envelope", "frame_index", "metadata", "state_update"})
}

func TestGenerate(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			b, err := JSON(name)
			test.That(t, err, test.ShouldBeNil)
			var doc map[string]any
			test.That(t, json.Unmarshal(b, &doc), test.ShouldBeNil)
			test.That(t, doc, test.ShouldContainKey, "$schema")
		})
	}

	b, err := JSON("state_update")
	test.That(t, err, test.ShouldBeNil)
	for _, want := range []string{"update_type", "SNAPSHOT", "PERSISTENT", "time_series", "target_pose", "treetable"} {
		test.That(t, string(b), test.ShouldContainSubstring, want)
	}
	b, err = JSON("metadata")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(b), test.ShouldContainSubstring, "UI_PRIMITIVE")

	_, err = Generate("nope")
	test.That(t, err, test.ShouldNotBeNil)
}
