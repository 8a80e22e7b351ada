package buildinfo

import (
	"fmt"
	"runtime/debug"
	"testing"

	. "src.fsl.sh/pkg/prog/progtest"
)

func TestProgram(t *testing.T) {
	Test(t, &Program{},
		ThatFsl("-version").WritesStdout(Value.Version+"\n"),
		ThatFsl("-version", "-json").WritesStdout(mustToJSON(Value.Version)+"\n"),

		ThatFsl("-buildinfo").WritesStdout(
			fmt.Sprintf(
				"Version: %v\nGo version: %v\n", Value.Version, Value.GoVersion)),
		ThatFsl("-buildinfo", "-json").WritesStdout(mustToJSON(Value)+"\n"),

		ThatFsl().ExitsWith(2).WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestDevVersion(t *testing.T) {
	vcs := func(rev, ts, modified string) *debug.BuildInfo {
		return &debug.BuildInfo{Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: rev},
			{Key: "vcs.time", Value: ts},
			{Key: "vcs.modified", Value: modified},
		}}
	}
	tests := []struct {
		name        string
		vcsOverride string
		bi          *debug.BuildInfo
		want        string
	}{
		{"no BuildInfo", "", nil, "0.42.0-dev.unknown"},
		{"devel main module", "",
			&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			"0.42.0-dev.unknown"},
		{"tagged main module", "",
			&debug.BuildInfo{Main: debug.Module{Version: "v0.42.0"}},
			"0.42.0"},
		{"clean checkout", "",
			vcs("1234567890123456", "2022-04-01T23:59:58Z", "false"),
			"0.42.0-dev.0.20220401235958-123456789012"},
		{"dirty checkout", "",
			vcs("1234567890123456", "2022-04-01T23:59:58Z", "true"),
			"0.42.0-dev.0.20220401235958-123456789012-dirty"},
		{"bad timestamp", "",
			vcs("1234567890123456", "April First", "false"),
			"0.42.0-dev.unknown"},
		{"override", "20220401235958-123456789012", nil,
			"0.42.0-dev.0.20220401235958-123456789012"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := func() (*debug.BuildInfo, bool) { return test.bi, test.bi != nil }
			got := devVersion("0.42.0", test.vcsOverride, f)
			if got != test.want {
				t.Errorf("got %q, want %q", got, test.want)
			}
		})
	}
}
