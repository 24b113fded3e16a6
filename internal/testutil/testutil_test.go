package testutil_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/consulo/go-launcher/internal/jre"
	"github.com/consulo/go-launcher/internal/testutil"
)

func TestCreateRuntime_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		shape testutil.RuntimeShape
		want  jre.Arch
	}{
		{name: "modern", shape: testutil.RuntimeShape{}, want: jre.Arch64},
		{name: "legacy 64", shape: testutil.RuntimeShape{Arch: jre.Arch64}, want: jre.Arch64},
		{name: "legacy 32", shape: testutil.RuntimeShape{Arch: jre.Arch32}, want: jre.Arch32},
		{name: "nested client", shape: testutil.RuntimeShape{Nested: true, Modes: []jre.Mode{jre.ModeClient}}, want: jre.Arch64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			root := filepath.FromSlash("/runtimes/" + tt.name)
			home := testutil.CreateRuntime(t, fs, root, tt.shape)

			found, ok := jre.FindValid(fs, root)
			if !ok {
				t.Fatalf("FindValid(%s) = false, want true", root)
			}

			if found != home {
				t.Errorf("FindValid() = %s, want %s", found, home)
			}

			if got := jre.DetectArch(fs, home, jre.Arch64); got != tt.want {
				t.Errorf("DetectArch() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMockRuntime(t *testing.T) {
	t.Parallel()

	rt := testutil.NewMockRuntime()
	rt.DispatchErr = errors.New("boom")

	var hooked []testutil.DispatchRecord
	rt.OnDispatch = func(rec testutil.DispatchRecord) { hooked = append(hooked, rec) }

	if err := rt.RunMain([]string{"--foo"}); err != nil {
		t.Fatalf("RunMain() error = %v", err)
	}

	if err := rt.Dispatch("/work", "consulo --bar"); err == nil {
		t.Error("Dispatch() error = nil, want boom")
	}

	if err := rt.Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}

	if calls := rt.GetMainCalls(); len(calls) != 1 || calls[0][0] != "--foo" {
		t.Errorf("GetMainCalls() = %v", calls)
	}

	if len(hooked) != 1 || hooked[0].WorkDir != "/work" {
		t.Errorf("OnDispatch saw %v", hooked)
	}

	if !rt.IsDestroyed() {
		t.Error("IsDestroyed() = false, want true")
	}

	rt.Reset()

	if len(rt.GetDispatches()) != 0 || rt.IsDestroyed() {
		t.Error("Reset() did not clear state")
	}
}
