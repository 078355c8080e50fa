package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/jbweber/fdurt/api/v1alpha1"
)

// TableFormatter formats resources as human-readable tables.
type TableFormatter struct {
	// NoHeaders omits the header row.
	NoHeaders bool
}

// FormatFDU formats a single FDU as a table row.
func (f *TableFormatter) FormatFDU(fdu *v1alpha1.FDU) (string, error) {
	return f.FormatFDUList([]*v1alpha1.FDU{fdu})
}

// FormatFDUList formats a list of FDUs as a table.
func (f *TableFormatter) FormatFDUList(fdus []*v1alpha1.FDU) (string, error) {
	if len(fdus) == 0 {
		return "No FDUs found\n", nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "NAME\tUUID\tSTATE\tSTATUS\tIMAGE\tFLAVOR\tAGE")
	}

	for _, fdu := range fdus {
		name := fdu.Name
		uuid := fdu.Spec.UUID
		state := string(fdu.Status.State)
		if state == "" {
			state = "-"
		}
		label := string(fdu.Status.StatusLabel)
		if label == "" {
			label = "-"
		}

		image := fdu.Status.ImageID
		if image == "" {
			image = fdu.Spec.BaseImage
		}
		if image == "" {
			image = "-"
		}

		flavor := fdu.Status.FlavorID
		if flavor == "" {
			flavor = fdu.Spec.FlavorID
		}
		if flavor == "" {
			flavor = "-"
		}

		age := "-"
		if !fdu.CreationTimestamp.IsZero() {
			age = formatAge(time.Since(fdu.CreationTimestamp.Time))
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			name, uuid, state, label, image, flavor, age)
	}

	_ = w.Flush()
	return buf.String(), nil
}

// FormatImageList formats the image registry as a table.
func (f *TableFormatter) FormatImageList(images []*v1alpha1.Image) (string, error) {
	if len(images) == 0 {
		return "No images found\n", nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "NAME\tUUID\tFORMAT\tLOCAL PATH")
	}

	for _, img := range images {
		localPath := img.Status.LocalPath
		if localPath == "" {
			localPath = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			img.Name, img.Spec.UUID, img.Spec.Format, localPath)
	}

	_ = w.Flush()
	return buf.String(), nil
}

// FormatFlavorList formats the flavor registry as a table.
func (f *TableFormatter) FormatFlavorList(flavors []*v1alpha1.Flavor) (string, error) {
	if len(flavors) == 0 {
		return "No flavors found\n", nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "NAME\tUUID\tCPU\tMEMORY\tDISK")
	}

	for _, fl := range flavors {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d MB\t%d GB\n",
			fl.Name, fl.Spec.UUID, fl.Spec.CPU, fl.Spec.MemoryMB, fl.Spec.DiskSizeGB)
	}

	_ = w.Flush()
	return buf.String(), nil
}

// formatAge formats a duration as a human-readable age string.
// Examples: "5s", "2m", "3h", "4d", "2w", "1y"
func formatAge(d time.Duration) string {
	// Handle negative durations (shouldn't happen, but be defensive)
	if d < 0 {
		return "unknown"
	}

	seconds := int(d.Seconds())

	// Less than 1 minute
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}

	minutes := seconds / 60
	// Less than 1 hour
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}

	hours := minutes / 60
	// Less than 1 day
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}

	days := hours / 24
	// Less than 1 week
	if days < 7 {
		return fmt.Sprintf("%dd", days)
	}

	weeks := days / 7
	// Less than ~2 months (8 weeks)
	if weeks < 8 {
		return fmt.Sprintf("%dw", weeks)
	}

	// More than 2 months, show in approximate years/days
	years := days / 365
	if years > 0 {
		return fmt.Sprintf("%dy", years)
	}

	return fmt.Sprintf("%dd", days)
}
