package output

import (
	"strings"
	"testing"
	"time"

	"github.com/jbweber/fdurt/api/v1alpha1"
)

// createTestFDU creates an FDU for testing.
func createTestFDU(name string, state v1alpha1.FDUState, imageID string) *v1alpha1.FDU {
	fdu := v1alpha1.NewFDU(name+"-uuid", name)
	fdu.CreationTimestamp = v1alpha1.Time{Time: time.Now().Add(-5 * time.Minute)}
	fdu.Status.State = state
	fdu.Status.ImageID = imageID
	return fdu
}

func TestTableFormatter_FormatFDU(t *testing.T) {
	tests := []struct {
		name      string
		fdu       *v1alpha1.FDU
		wantName  string
		wantState string
	}{
		{
			name:      "running FDU with image",
			fdu:       createTestFDU("test-fdu", v1alpha1.FDUStateRunning, "img-1"),
			wantName:  "test-fdu",
			wantState: "RUNNING",
		},
		{
			name:      "defined FDU without image",
			fdu:       createTestFDU("defined-fdu", v1alpha1.FDUStateDefined, ""),
			wantName:  "defined-fdu",
			wantState: "DEFINED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &TableFormatter{}
			output, err := formatter.FormatFDU(tt.fdu)
			if err != nil {
				t.Fatalf("FormatFDU() error = %v", err)
			}

			if !strings.Contains(output, tt.wantName) {
				t.Errorf("output missing FDU name %q: %s", tt.wantName, output)
			}
			if !strings.Contains(output, tt.wantState) {
				t.Errorf("output missing state %q: %s", tt.wantState, output)
			}
		})
	}
}

func TestTableFormatter_FormatFDUList(t *testing.T) {
	tests := []struct {
		name       string
		fdus       []*v1alpha1.FDU
		noHeaders  bool
		wantCount  int
		wantHeader bool
	}{
		{
			name:      "empty list",
			fdus:      []*v1alpha1.FDU{},
			wantCount: 0,
		},
		{
			name: "single FDU",
			fdus: []*v1alpha1.FDU{
				createTestFDU("fdu1", v1alpha1.FDUStateRunning, "img-1"),
			},
			wantCount:  1,
			wantHeader: true,
		},
		{
			name: "multiple FDUs",
			fdus: []*v1alpha1.FDU{
				createTestFDU("fdu1", v1alpha1.FDUStateRunning, "img-1"),
				createTestFDU("fdu2", v1alpha1.FDUStateConfigured, ""),
				createTestFDU("fdu3", v1alpha1.FDUStateDefined, ""),
			},
			wantCount:  3,
			wantHeader: true,
		},
		{
			name: "no headers",
			fdus: []*v1alpha1.FDU{
				createTestFDU("fdu1", v1alpha1.FDUStateRunning, "img-1"),
			},
			noHeaders:  true,
			wantCount:  1,
			wantHeader: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &TableFormatter{NoHeaders: tt.noHeaders}
			output, err := formatter.FormatFDUList(tt.fdus)
			if err != nil {
				t.Fatalf("FormatFDUList() error = %v", err)
			}

			if tt.wantCount == 0 {
				if !strings.Contains(output, "No FDUs found") {
					t.Errorf("expected 'No FDUs found' message, got: %s", output)
				}
				return
			}

			hasHeader := strings.Contains(output, "NAME") && strings.Contains(output, "STATE")
			if tt.wantHeader && !hasHeader {
				t.Errorf("expected header in output, got: %s", output)
			}
			if !tt.wantHeader && hasHeader {
				t.Errorf("expected no header in output, got: %s", output)
			}

			lines := strings.Split(strings.TrimSpace(output), "\n")
			expectedLines := tt.wantCount
			if tt.wantHeader {
				expectedLines++
			}
			if len(lines) != expectedLines {
				t.Errorf("expected %d lines, got %d: %s", expectedLines, len(lines), output)
			}
		})
	}
}

func TestTableFormatter_FormatImageList(t *testing.T) {
	images := []*v1alpha1.Image{
		{
			ObjectMeta: v1alpha1.ObjectMeta{Name: "img1"},
			Spec:       v1alpha1.ImageSpec{UUID: "uuid-1", Format: "qcow2"},
			Status:     v1alpha1.ImageStatus{LocalPath: "/var/lib/fdurt/kvm/images/uuid-1.qcow2"},
		},
	}

	formatter := &TableFormatter{}
	output, err := formatter.FormatImageList(images)
	if err != nil {
		t.Fatalf("FormatImageList() error = %v", err)
	}
	if !strings.Contains(output, "img1") || !strings.Contains(output, "qcow2") {
		t.Errorf("output missing expected image fields: %s", output)
	}
}

func TestTableFormatter_FormatFlavorList(t *testing.T) {
	flavors := []*v1alpha1.Flavor{
		{
			ObjectMeta: v1alpha1.ObjectMeta{Name: "small"},
			Spec:       v1alpha1.FlavorSpec{UUID: "uuid-1", CPU: 2, MemoryMB: 2048, DiskSizeGB: 20},
		},
	}

	formatter := &TableFormatter{}
	output, err := formatter.FormatFlavorList(flavors)
	if err != nil {
		t.Fatalf("FormatFlavorList() error = %v", err)
	}
	if !strings.Contains(output, "small") || !strings.Contains(output, "2048") {
		t.Errorf("output missing expected flavor fields: %s", output)
	}
}

func TestYAMLFormatter_FormatFDU(t *testing.T) {
	fdu := createTestFDU("test-fdu", v1alpha1.FDUStateRunning, "img-1")

	formatter := &YAMLFormatter{}
	output, err := formatter.FormatFDU(fdu)
	if err != nil {
		t.Fatalf("FormatFDU() error = %v", err)
	}

	requiredFields := []string{
		"apiVersion:",
		"kind:",
		"metadata:",
		"name: test-fdu",
		"spec:",
		"status:",
		"state: RUNNING",
	}

	for _, field := range requiredFields {
		if !strings.Contains(output, field) {
			t.Errorf("output missing required field %q: %s", field, output)
		}
	}
}

func TestYAMLFormatter_FormatFDUList(t *testing.T) {
	tests := []struct {
		name      string
		fdus      []*v1alpha1.FDU
		wantEmpty bool
	}{
		{
			name:      "empty list",
			fdus:      []*v1alpha1.FDU{},
			wantEmpty: true,
		},
		{
			name: "single FDU",
			fdus: []*v1alpha1.FDU{
				createTestFDU("fdu1", v1alpha1.FDUStateRunning, "img-1"),
			},
		},
		{
			name: "multiple FDUs",
			fdus: []*v1alpha1.FDU{
				createTestFDU("fdu1", v1alpha1.FDUStateRunning, "img-1"),
				createTestFDU("fdu2", v1alpha1.FDUStateDefined, ""),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &YAMLFormatter{}
			output, err := formatter.FormatFDUList(tt.fdus)
			if err != nil {
				t.Fatalf("FormatFDUList() error = %v", err)
			}

			if tt.wantEmpty {
				if output != "" {
					t.Errorf("expected empty output, got: %s", output)
				}
				return
			}

			if len(tt.fdus) > 1 {
				if !strings.Contains(output, "---") {
					t.Errorf("expected document separator '---' in output")
				}
			}

			for _, fdu := range tt.fdus {
				if !strings.Contains(output, fdu.Name) {
					t.Errorf("output missing FDU name %q", fdu.Name)
				}
			}
		})
	}
}

func TestJSONFormatter_FormatFDU(t *testing.T) {
	fdu := createTestFDU("test-fdu", v1alpha1.FDUStateRunning, "img-1")

	formatter := &JSONFormatter{}
	output, err := formatter.FormatFDU(fdu)
	if err != nil {
		t.Fatalf("FormatFDU() error = %v", err)
	}

	requiredFields := []string{
		`"apiVersion"`,
		`"kind"`,
		`"metadata"`,
		`"name": "test-fdu"`,
		`"spec"`,
		`"status"`,
		`"state": "RUNNING"`,
	}

	for _, field := range requiredFields {
		if !strings.Contains(output, field) {
			t.Errorf("output missing required field %q: %s", field, output)
		}
	}
}

func TestJSONFormatter_FormatFDUList(t *testing.T) {
	tests := []struct {
		name      string
		fdus      []*v1alpha1.FDU
		wantEmpty bool
	}{
		{
			name:      "empty list",
			fdus:      []*v1alpha1.FDU{},
			wantEmpty: true,
		},
		{
			name: "single FDU",
			fdus: []*v1alpha1.FDU{
				createTestFDU("fdu1", v1alpha1.FDUStateRunning, "img-1"),
			},
		},
		{
			name: "multiple FDUs",
			fdus: []*v1alpha1.FDU{
				createTestFDU("fdu1", v1alpha1.FDUStateRunning, "img-1"),
				createTestFDU("fdu2", v1alpha1.FDUStateDefined, ""),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &JSONFormatter{}
			output, err := formatter.FormatFDUList(tt.fdus)
			if err != nil {
				t.Fatalf("FormatFDUList() error = %v", err)
			}

			if tt.wantEmpty {
				expected := "[]\n"
				if output != expected {
					t.Errorf("expected %q, got: %q", expected, output)
				}
				return
			}

			if !strings.HasPrefix(strings.TrimSpace(output), "[") {
				t.Errorf("expected output to start with '[': %s", output)
			}

			for _, fdu := range tt.fdus {
				if !strings.Contains(output, fdu.Name) {
					t.Errorf("output missing FDU name %q", fdu.Name)
				}
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{
			name: "table format",
			opts: Options{Format: FormatTable},
		},
		{
			name: "yaml format",
			opts: Options{Format: FormatYAML},
		},
		{
			name: "json format",
			opts: Options{Format: FormatJSON},
		},
		{
			name:    "invalid format",
			opts:    Options{Format: "invalid"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter, err := NewFormatter(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewFormatter() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && formatter == nil {
				t.Error("NewFormatter() returned nil formatter")
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{
			name:   "valid table",
			format: "table",
		},
		{
			name:   "valid yaml",
			format: "yaml",
		},
		{
			name:   "valid json",
			format: "json",
		},
		{
			name:    "invalid format",
			format:  "xml",
			wantErr: true,
		},
		{
			name:    "empty format",
			format:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFormat(tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"5 seconds", 5 * time.Second, "5s"},
		{"30 seconds", 30 * time.Second, "30s"},
		{"2 minutes", 2 * time.Minute, "2m"},
		{"90 seconds", 90 * time.Second, "1m"},
		{"2 hours", 2 * time.Hour, "2h"},
		{"90 minutes", 90 * time.Minute, "1h"},
		{"2 days", 48 * time.Hour, "2d"},
		{"2 weeks", 14 * 24 * time.Hour, "2w"},
		{"50 days", 50 * 24 * time.Hour, "7w"},
		{"60 days", 60 * 24 * time.Hour, "60d"}, // >= 8 weeks shows as days
		{"400 days", 400 * 24 * time.Hour, "1y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatAge(tt.duration)
			if got != tt.want {
				t.Errorf("formatAge(%v) = %q, want %q", tt.duration, got, tt.want)
			}
		})
	}
}
