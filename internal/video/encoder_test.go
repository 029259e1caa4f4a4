package video

import "testing"

func TestQualityArgsDefaults(t *testing.T) {
	cases := []struct {
		encoder string
		key     string
		want    interface{}
	}{
		{"h264_videotoolbox", "b:v", "7500k"},
		{"h264_nvenc", "cq", 28},
		{"libx264", "crf", 23},
	}
	for _, c := range cases {
		args := qualityArgs(c.encoder, 0)
		if got := args[c.key]; got != c.want {
			t.Errorf("%s: %s = %v, want %v", c.encoder, c.key, got, c.want)
		}
	}
}

func TestQualityArgsExplicit(t *testing.T) {
	args := qualityArgs("libx264", 18)
	if args["crf"] != 18 {
		t.Errorf("crf = %v, want 18", args["crf"])
	}
	if args["preset"] != "medium" {
		t.Errorf("preset = %v, want medium", args["preset"])
	}
}
