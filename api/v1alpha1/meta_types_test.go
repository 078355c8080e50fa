package v1alpha1

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTime_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		time Time
		want string
	}{
		{name: "zero time is null", time: Time{}, want: "null"},
		{
			name: "valid time is RFC3339",
			time: Time{Time: time.Date(2026, 8, 2, 10, 30, 0, 0, time.UTC)},
			want: `"2026-08-02T10:30:00Z"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.time.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))

			var back Time
			require.NoError(t, back.UnmarshalJSON(got))
			assert.True(t, back.Time.Equal(tt.time.Time))
		})
	}
}

func TestTime_UnmarshalJSON_Invalid(t *testing.T) {
	var ts Time
	assert.Error(t, ts.UnmarshalJSON([]byte(`"not-a-timestamp"`)))
}

func TestTime_YAMLRoundTrip(t *testing.T) {
	ts := Time{Time: time.Date(2026, 8, 2, 10, 30, 0, 0, time.UTC)}

	out, err := yaml.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, "\"2026-08-02T10:30:00Z\"\n", string(out))

	var back Time
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.True(t, back.Time.Equal(ts.Time))
}

func TestTime_YAMLZeroIsNull(t *testing.T) {
	out, err := yaml.Marshal(Time{})
	require.NoError(t, err)
	assert.Equal(t, "null\n", string(out))
}

func TestFDU_JSONCarriesMeta(t *testing.T) {
	fdu := &FDU{
		TypeMeta: TypeMeta{
			APIVersion: GroupName + "/" + Version,
			Kind:       FDUKind,
		},
		ObjectMeta: ObjectMeta{
			Name:       "web-1",
			UID:        "deadbeef",
			Generation: 3,
			Labels:     map[string]string{"tier": "edge"},
		},
		Spec: FDUSpec{
			UUID:      "11111111-1111-1111-1111-111111111111",
			Name:      "web-1",
			BaseImage: "img-1",
		},
	}

	data, err := json.Marshal(fdu)
	require.NoError(t, err)

	var back FDU
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, FDUKind, back.Kind)
	assert.Equal(t, "web-1", back.Name)
	assert.Equal(t, int64(3), back.Generation)
	assert.Equal(t, "edge", back.Labels["tier"])
	assert.Equal(t, "img-1", back.Spec.BaseImage)
}

func TestObjectMeta_DeepCopyIsolatesMaps(t *testing.T) {
	in := &ObjectMeta{
		Name:        "web-1",
		Labels:      map[string]string{"tier": "edge"},
		Annotations: map[string]string{"note": "original"},
	}

	out := in.DeepCopy()
	out.Labels["tier"] = "core"
	out.Annotations["note"] = "copy"

	assert.Equal(t, "edge", in.Labels["tier"])
	assert.Equal(t, "original", in.Annotations["note"])
}

func TestCondition_DeepCopy(t *testing.T) {
	in := &Condition{
		Type:               ConditionReady,
		Status:             ConditionTrue,
		Reason:             "DomainRunning",
		Message:            "domain reported state 1",
		ObservedGeneration: 2,
	}

	out := in.DeepCopy()
	require.NotSame(t, in, out)
	assert.Equal(t, *in, *out)

	out.Status = ConditionFalse
	assert.Equal(t, ConditionTrue, in.Status)
}

func TestTypeMeta_DeepCopyNil(t *testing.T) {
	var tm *TypeMeta
	assert.Nil(t, tm.DeepCopy())

	var om *ObjectMeta
	assert.Nil(t, om.DeepCopy())

	var c *Condition
	assert.Nil(t, c.DeepCopy())
}
