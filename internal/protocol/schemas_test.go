package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	frameSchema := compile("frame.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "observer_name":"viewer1"
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "run_id":"run_20260823_1",
	  "round":0,
	  "run_params":{
	    "width":10,
	    "height":10,
	    "num_holes":5,
	    "num_orbs":5,
	    "max_score":5,
	    "strategy":"SEQUENTIAL",
	    "team_mode":false,
	    "seed":1337
	  }
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var frame any
	_ = json.Unmarshal([]byte(`{
	  "type":"FRAME",
	  "protocol_version":"1.0",
	  "run_id":"run_20260823_1",
	  "round":3,
	  "width":3,
	  "height":2,
	  "terrain":["AAM=","AAED","AgE="],
	  "agents":[{"id":"a1","type":1,"x":0,"y":0,"dir":"UP","battery":27,"carrying":true,"score":1,"own_score":1}],
	  "orbs":2,
	  "filled_holes":1,
	  "digest":"deadbeef"
	}`), &frame)
	validate(frameSchema, frame)

	var badFrame any
	_ = json.Unmarshal([]byte(`{
	  "type":"FRAME",
	  "protocol_version":"1.0",
	  "run_id":"r",
	  "round":0,
	  "width":1,
	  "height":1,
	  "terrain":[],
	  "agents":[{"id":"a1","type":1,"x":0,"y":0,"dir":"SIDEWAYS","battery":0,"carrying":false,"score":0,"own_score":0}],
	  "orbs":0,
	  "filled_holes":0,
	  "digest":"d"
	}`), &badFrame)
	if err := frameSchema.Validate(badFrame); err == nil {
		t.Fatalf("bad dir value should fail validation")
	}
}
