package jre

// View selects which half of a split 32/64-bit registry is queried.
type View int

const (
	// View32 is the 32-bit registry view.
	View32 View = iota
	// ViewNative is the registry view native to the launcher process.
	ViewNative
)

func (v View) String() string {
	if v == View32 {
		return "32-bit"
	}

	return "native"
}

// Kinds are the registry subkeys tried for every version, in order.
var Kinds = []string{"JRE", "JDK", "Java Runtime Environment"}

// Enumerator lists installed runtimes known to the platform.
// It is the per-OS collaborator behind the last discovery step.
type Enumerator interface {
	// Candidates returns runtime homes registered for version in view,
	// in preference order. Homes need not be valid; the locator checks them.
	Candidates(version string, view View) ([]string, error)

	// CurrentVersion returns the version the platform marks as current in
	// view, or "" if there is none.
	CurrentVersion(view View) (string, error)
}

// NoEnumerator is an Enumerator that knows no runtimes.
type NoEnumerator struct{}

// Candidates implements Enumerator.
func (NoEnumerator) Candidates(string, View) ([]string, error) { return nil, nil }

// CurrentVersion implements Enumerator.
func (NoEnumerator) CurrentVersion(View) (string, error) { return "", nil }
