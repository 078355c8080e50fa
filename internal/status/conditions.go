// Package status provides utilities for managing FDU status fields,
// including conditions and lifecycle state transitions.
package status

import (
	"time"

	"github.com/jbweber/fdurt/api/v1alpha1"
)

// SetCondition adds or updates a condition in the FDU status.
// If a condition with the same type already exists, it updates it.
// The LastTransitionTime is only updated if the status changes.
func SetCondition(fdu *v1alpha1.FDU, condType string, status v1alpha1.ConditionStatus, reason, message string) {
	now := v1alpha1.Time{Time: time.Now()}

	newCondition := v1alpha1.Condition{
		Type:               condType,
		Status:             status,
		ObservedGeneration: fdu.Generation,
		LastTransitionTime: now,
		Reason:             reason,
		Message:            message,
	}

	// Find existing condition
	for i := range fdu.Status.Conditions {
		if fdu.Status.Conditions[i].Type == condType {
			// Update existing condition
			existing := &fdu.Status.Conditions[i]

			// Only update LastTransitionTime if status changed
			if existing.Status != status {
				existing.LastTransitionTime = now
			}

			existing.Status = status
			existing.Reason = reason
			existing.Message = message
			existing.ObservedGeneration = fdu.Generation
			return
		}
	}

	// Condition doesn't exist, append it
	fdu.Status.Conditions = append(fdu.Status.Conditions, newCondition)
}

// GetCondition returns a condition by type, or nil if not found.
func GetCondition(fdu *v1alpha1.FDU, condType string) *v1alpha1.Condition {
	for i := range fdu.Status.Conditions {
		if fdu.Status.Conditions[i].Type == condType {
			return &fdu.Status.Conditions[i]
		}
	}
	return nil
}

// IsConditionTrue returns true if the condition exists and has status True.
func IsConditionTrue(fdu *v1alpha1.FDU, condType string) bool {
	cond := GetCondition(fdu, condType)
	return cond != nil && cond.Status == v1alpha1.ConditionTrue
}

// IsConditionFalse returns true if the condition exists and has status False.
func IsConditionFalse(fdu *v1alpha1.FDU, condType string) bool {
	cond := GetCondition(fdu, condType)
	return cond != nil && cond.Status == v1alpha1.ConditionFalse
}

// RemoveCondition removes a condition by type.
func RemoveCondition(fdu *v1alpha1.FDU, condType string) {
	filtered := make([]v1alpha1.Condition, 0, len(fdu.Status.Conditions))
	for i := range fdu.Status.Conditions {
		if fdu.Status.Conditions[i].Type != condType {
			filtered = append(filtered, fdu.Status.Conditions[i])
		}
	}
	fdu.Status.Conditions = filtered
}

// MarkConfigured sets all provisioning conditions True and moves the FDU to
// CONFIGURED. Called at the end of configure_fdu once disk, cdrom, and the
// libvirt domain all exist.
func MarkConfigured(fdu *v1alpha1.FDU) {
	SetCondition(fdu, v1alpha1.ConditionStorageProvisioned, v1alpha1.ConditionTrue, "StorageCreated", "disk and cdrom volumes created")
	SetCondition(fdu, v1alpha1.ConditionNetworkConfigured, v1alpha1.ConditionTrue, "NetworkReady", "network interfaces resolved")
	SetCondition(fdu, v1alpha1.ConditionCloudInitReady, v1alpha1.ConditionTrue, "CloudInitReady", "config drive built")
	fdu.SetState(v1alpha1.FDUStateConfigured)
	fdu.SetStatusLabel(v1alpha1.StatusLabelConfigured)
	fdu.UpdateObservedGeneration()
}

// MarkStorageProvisioned marks the storage provisioning condition as True.
func MarkStorageProvisioned(fdu *v1alpha1.FDU) {
	SetCondition(fdu, v1alpha1.ConditionStorageProvisioned, v1alpha1.ConditionTrue, "StorageCreated", "disk and cdrom volumes created")
}

// MarkStorageFailed marks the storage provisioning condition as False and
// raises the status label to error without altering the coarse state.
func MarkStorageFailed(fdu *v1alpha1.FDU, err error) {
	SetCondition(fdu, v1alpha1.ConditionStorageProvisioned, v1alpha1.ConditionFalse, "StorageFailed", err.Error())
	fdu.SetStatusLabel(v1alpha1.StatusLabelError)
}

// MarkNetworkConfigured marks the network configuration condition as True.
func MarkNetworkConfigured(fdu *v1alpha1.FDU) {
	SetCondition(fdu, v1alpha1.ConditionNetworkConfigured, v1alpha1.ConditionTrue, "NetworkReady", "network interfaces resolved")
}

// MarkNetworkFailed marks the network configuration condition as False.
func MarkNetworkFailed(fdu *v1alpha1.FDU, err error) {
	SetCondition(fdu, v1alpha1.ConditionNetworkConfigured, v1alpha1.ConditionFalse, "NetworkFailed", err.Error())
	fdu.SetStatusLabel(v1alpha1.StatusLabelError)
}

// MarkCloudInitReady marks the cloud-init condition as True.
func MarkCloudInitReady(fdu *v1alpha1.FDU) {
	SetCondition(fdu, v1alpha1.ConditionCloudInitReady, v1alpha1.ConditionTrue, "CloudInitGenerated", "config drive built")
}

// MarkCloudInitFailed marks the cloud-init condition as False.
func MarkCloudInitFailed(fdu *v1alpha1.FDU, err error) {
	SetCondition(fdu, v1alpha1.ConditionCloudInitReady, v1alpha1.ConditionFalse, "CloudInitFailed", err.Error())
	fdu.SetStatusLabel(v1alpha1.StatusLabelError)
}

// MarkRunning sets Ready True and moves the FDU to RUNNING. Called once the
// libvirt domain is confirmed active after run_fdu.
func MarkRunning(fdu *v1alpha1.FDU) {
	SetCondition(fdu, v1alpha1.ConditionReady, v1alpha1.ConditionTrue, "FDURunning", "domain is active")
	fdu.SetState(v1alpha1.FDUStateRunning)
	fdu.SetStatusLabel(v1alpha1.StatusLabelRun)
	fdu.UpdateObservedGeneration()
}

// MarkPaused sets Ready False and moves the FDU to PAUSED.
func MarkPaused(fdu *v1alpha1.FDU) {
	SetCondition(fdu, v1alpha1.ConditionReady, v1alpha1.ConditionFalse, "Paused", "domain is suspended")
	fdu.SetState(v1alpha1.FDUStatePaused)
	fdu.SetStatusLabel(v1alpha1.StatusLabelPause)
}

// MarkStopped moves a RUNNING or PAUSED FDU back to CONFIGURED after
// stop_fdu completes.
func MarkStopped(fdu *v1alpha1.FDU) {
	SetCondition(fdu, v1alpha1.ConditionReady, v1alpha1.ConditionFalse, "Stopped", "domain has been shut down")
	fdu.SetState(v1alpha1.FDUStateConfigured)
	fdu.SetStatusLabel(v1alpha1.StatusLabelStop)
}

// MarkFailed sets the Ready condition to False and raises the error status
// label. The coarse State is left as-is; callers decide recoverability.
func MarkFailed(fdu *v1alpha1.FDU, reason, message string) {
	SetCondition(fdu, v1alpha1.ConditionReady, v1alpha1.ConditionFalse, reason, message)
	fdu.Status.Message = message
	fdu.SetStatusLabel(v1alpha1.StatusLabelError)
}
