package pif

import "fmt"

// Profile selects lossless coding or the per-channel bit depths of lossy
// coding. The zero Profile encodes losslessly.
type Profile struct {
	Name        string // command-line name, e.g. "visual"
	Description string
	Lossless    bool

	// Bits kept per channel in lossy profiles, 1 to 8.
	YBits  int
	CbBits int
	CrBits int
	ABits  int
}

// Built-in profiles.
var (
	ProfileLossless = Profile{Name: "lossless", Description: "Lossless", Lossless: true}
	ProfileVisual   = Profile{Name: "visual", Description: "Visually Lossless", YBits: 7, CbBits: 6, CrBits: 6, ABits: 8}
	ProfileHigh     = Profile{Name: "high", Description: "High Quality", YBits: 6, CbBits: 5, CrBits: 5, ABits: 8}
	ProfileCompact  = Profile{Name: "compact", Description: "Compact", YBits: 4, CbBits: 4, CrBits: 4, ABits: 8}
)

// Profiles returns the built-in profiles, lossless first.
func Profiles() []Profile {
	return []Profile{ProfileLossless, ProfileVisual, ProfileHigh, ProfileCompact}
}

// ProfileByName returns the built-in profile with the given name.
func ProfileByName(name string) (Profile, bool) {
	for _, p := range Profiles() {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

func (p Profile) String() string {
	if p.Name == "" && p.isLossless() {
		return ProfileLossless.Name
	}
	return p.Name
}

func (p Profile) isLossless() bool {
	return p.Lossless || p == Profile{}
}

// Validate checks the bit depths of a lossy profile.
func (p Profile) Validate() error {
	if p.isLossless() {
		return nil
	}
	for _, c := range []struct {
		name string
		bits int
	}{{"Y", p.YBits}, {"Cb", p.CbBits}, {"Cr", p.CrBits}, {"A", p.ABits}} {
		if c.bits < 1 || c.bits > 8 {
			return fmt.Errorf("%w: %s bits %d out of range [1, 8]", ErrInvalidProfile, c.name, c.bits)
		}
	}
	return nil
}
