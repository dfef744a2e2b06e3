package midi

import (
	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// Setup stages a transport error can be tagged with
const (
	KindClientCreation ftag.Kind = "CLIENT_CREATION"
	KindPortCreation   ftag.Kind = "PORT_CREATION"
	KindSourceCreation ftag.Kind = "SOURCE_CREATION"
)

// SetupStage returns which transport stage err failed at, or "" if the
// error carries no stage tag.
func SetupStage(err error) ftag.Kind {
	if err == nil {
		return ""
	}
	switch k := ftag.Get(err); k {
	case KindClientCreation, KindPortCreation, KindSourceCreation:
		return k
	}
	return ""
}

func setupError(err error, kind ftag.Kind, msg, desc string) error {
	if err == nil {
		return fault.New(msg, ftag.With(kind), fmsg.WithDesc(msg, desc))
	}
	return fault.Wrap(err, ftag.With(kind), fmsg.WithDesc(msg, desc))
}
