package ops

import (
	"testing"
	"time"

	"github.com/hpungsan/panelist/internal/backend"
)

func TestDepsOptions_DefaultsWhenUnset(t *testing.T) {
	d := &Deps{}
	got := d.options()
	want := backend.DefaultOptions()
	if got.MaxTokens != want.MaxTokens || got.Temperature != want.Temperature {
		t.Errorf("options() = %+v, want defaults %+v", got, want)
	}

	d.Options = backend.Options{MaxTokens: 64, Temperature: 0}
	if got := d.options(); got.MaxTokens != 64 || got.Temperature != 0 {
		t.Errorf("options() = %+v, want configured values", got)
	}
}

func TestDepsNow(t *testing.T) {
	fixed := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	d := &Deps{Now: func() time.Time { return fixed }}
	if got := d.now(); !got.Equal(fixed) {
		t.Errorf("now() = %v, want %v", got, fixed)
	}

	d.Now = nil
	if got := d.now(); time.Since(got) > time.Minute {
		t.Errorf("now() = %v, want wall clock", got)
	}
}

func TestDepsLogger_NilIsSafe(t *testing.T) {
	d := &Deps{}
	d.logger().Info("discarded")
}
