package status

import (
	"fmt"

	"github.com/jbweber/fdurt/api/v1alpha1"
)

// StateTransitionNotAllowedError reports an attempt to move an FDU between
// two states the lifecycle engine does not permit directly.
type StateTransitionNotAllowedError struct {
	From v1alpha1.FDUState
	To   v1alpha1.FDUState
}

func (e *StateTransitionNotAllowedError) Error() string {
	return fmt.Sprintf("cannot transition FDU from %s to %s", e.From, e.To)
}

// TransitionToConfigured moves the FDU from DEFINED to CONFIGURED.
// This should be called once configure_fdu has provisioned storage,
// resolved networking, and defined the libvirt domain.
func TransitionToConfigured(fdu *v1alpha1.FDU) error {
	if fdu.GetState() != v1alpha1.FDUStateDefined {
		return &StateTransitionNotAllowedError{From: fdu.GetState(), To: v1alpha1.FDUStateConfigured}
	}

	MarkConfigured(fdu)
	return nil
}

// TransitionToRunning moves the FDU to RUNNING. Allowed from CONFIGURED
// (run_fdu) or PAUSED (resume_fdu).
func TransitionToRunning(fdu *v1alpha1.FDU) error {
	state := fdu.GetState()
	if state != v1alpha1.FDUStateConfigured && state != v1alpha1.FDUStatePaused {
		return &StateTransitionNotAllowedError{From: state, To: v1alpha1.FDUStateRunning}
	}

	MarkRunning(fdu)
	return nil
}

// TransitionToPaused moves the FDU to PAUSED. Only allowed from RUNNING.
func TransitionToPaused(fdu *v1alpha1.FDU) error {
	if fdu.GetState() != v1alpha1.FDUStateRunning {
		return &StateTransitionNotAllowedError{From: fdu.GetState(), To: v1alpha1.FDUStatePaused}
	}

	MarkPaused(fdu)
	return nil
}

// TransitionToStopped moves a RUNNING or PAUSED FDU back to CONFIGURED.
// The domain still exists (shut off); only stop_fdu reaches this state.
func TransitionToStopped(fdu *v1alpha1.FDU) error {
	state := fdu.GetState()
	if state != v1alpha1.FDUStateRunning && state != v1alpha1.FDUStatePaused {
		return &StateTransitionNotAllowedError{From: state, To: v1alpha1.FDUStateConfigured}
	}

	MarkStopped(fdu)
	return nil
}

// TransitionToFailed marks the FDU's status label as error without moving
// its coarse State, since the failure may be recoverable from whatever
// state the FDU was already in.
func TransitionToFailed(fdu *v1alpha1.FDU, reason, message string) {
	MarkFailed(fdu, reason, message)
}

// IsTerminal returns true for states that require an explicit operator
// action (run, resume, or undefine) before anything else happens.
func IsTerminal(state v1alpha1.FDUState) bool {
	return state == v1alpha1.FDUStateDefined || state == v1alpha1.FDUStateConfigured
}

// IsRunning returns true if the FDU's domain is active (running or paused).
func IsRunning(state v1alpha1.FDUState) bool {
	return state == v1alpha1.FDUStateRunning || state == v1alpha1.FDUStatePaused
}

// IsTransitioning returns true if the status label reflects an in-flight
// operation rather than a settled state.
func IsTransitioning(label v1alpha1.FDUStatusLabel) bool {
	return label == v1alpha1.StatusLabelStarting || label == v1alpha1.StatusLabelStop
}
