package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/jbweber/fdurt/api/v1alpha1"
)

// Dispatch maps an observer-reported action string to the corresponding
// LifecycleEngine operation. Unknown actions are logged and ignored rather
// than treated as an error, since the observer may report actions from a
// newer fabric schema this build doesn't know about yet.
func (e *Engine) Dispatch(action, uuid string, manifest *v1alpha1.FDU) error {
	switch action {
	case "define":
		if manifest == nil {
			e.log.WithField("fdu", uuid).Warn("dispatch: define action missing manifest, ignoring")
			return nil
		}
		return e.DefineFDU(manifest)
	case "configure":
		return e.ConfigureFDU(uuid)
	case "run":
		return e.RunFDU(uuid)
	case "stop":
		return e.StopFDU(uuid)
	case "pause":
		return e.PauseFDU(uuid)
	case "resume":
		return e.ResumeFDU(uuid)
	case "clean":
		return e.CleanFDU(uuid)
	case "undefine":
		return e.UndefineFDU(uuid)
	default:
		e.log.WithFields(logrus.Fields{"fdu": uuid, "action": action}).Warn("dispatch: unknown action, ignoring")
		return nil
	}
}
