package midi

import (
	"errors"
	"strings"
	"testing"

	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

func TestSetupStage(t *testing.T) {
	cause := errors.New("driver exploded")

	tests := []struct {
		name string
		err  error
		want ftag.Kind
	}{
		{"nil", nil, ""},
		{"untagged", cause, ""},
		{"client", setupError(cause, KindClientCreation, "could not create midi client", "driver"), KindClientCreation},
		{"port", setupError(nil, KindPortCreation, "no matching output port", "none"), KindPortCreation},
		{"source", setupError(cause, KindSourceCreation, "could not listen", "input"), KindSourceCreation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SetupStage(tt.err); got != tt.want {
				t.Errorf("SetupStage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetupErrorKeepsCause(t *testing.T) {
	cause := errors.New("driver exploded")
	err := setupError(cause, KindPortCreation, "could not open output port", "Output port X could not be opened")

	if !errors.Is(err, cause) {
		t.Error("cause lost from chain")
	}
	if !strings.Contains(err.Error(), "driver exploded") {
		t.Errorf("Error() = %q", err.Error())
	}
	if issue := fmsg.GetIssue(err); !strings.Contains(issue, "Output port X") {
		t.Errorf("GetIssue() = %q", issue)
	}
}
