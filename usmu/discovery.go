package usmu

import (
	"fmt"
	"strconv"

	"go.bug.st/serial/enumerator"

	"github.com/microvolt/go-usmu/logger"
	"github.com/microvolt/go-usmu/scpi"
)

// USB identity of the uSMU's virtual COM port. Fixed by the hardware, not
// configurable.
const (
	USBVendorID  uint16 = 1155  // 0x0483, STMicroelectronics
	USBProductID uint16 = 22336 // 0x5740, virtual COM port
)

// FailedIdentity is the placeholder identity of a candidate whose identity
// probe failed. A failed probe never aborts enumeration.
const FailedIdentity = "<failed to read>"

// PortCandidate is one enumerated serial port whose USB identity matches
// the uSMU.
type PortCandidate struct {
	// Path is the OS port path, e.g. /dev/ttyACM0 or COM3.
	Path string

	// VendorID and ProductID are the USB identity the port reported.
	VendorID  uint16
	ProductID uint16

	// Identity is the device-reported identity, or [FailedIdentity] when
	// the probe failed, or empty when no probe was attempted.
	Identity string
}

// EnumeratePorts lists the serial ports whose USB identity matches the
// uSMU. Candidate identities are not probed; see [ProbeIdentities].
func EnumeratePorts() ([]PortCandidate, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("usmu: enumerate serial ports: %w", err)
	}

	var candidates []PortCandidate
	for _, d := range details {
		if !d.IsUSB {
			continue
		}

		vid, err := parseUSBID(d.VID)
		if err != nil {
			continue
		}
		pid, err := parseUSBID(d.PID)
		if err != nil {
			continue
		}

		if vid != USBVendorID || pid != USBProductID {
			continue
		}

		candidates = append(candidates, PortCandidate{
			Path:      d.Name,
			VendorID:  vid,
			ProductID: pid,
		})
	}

	return candidates, nil
}

// parseUSBID parses the hex VID/PID string the enumerator reports.
func parseUSBID(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("usmu: invalid USB id %q: %w", s, err)
	}

	return uint16(v), nil
}

// ProbeIdentities annotates each candidate with its device-reported
// identity, best effort. A candidate that cannot be opened or identified
// gets [FailedIdentity] instead; probing never fails the enumeration.
func ProbeIdentities(candidates []PortCandidate, opts ...DeviceOption) {
	for i := range candidates {
		candidates[i].Identity = probeIdentity(candidates[i].Path, opts...)
	}
}

func probeIdentity(path string, opts ...DeviceOption) string {
	dev, err := Open(path, opts...)
	if err != nil {
		return FailedIdentity
	}
	defer dev.Close()

	uid, err := dev.Identity()
	if err != nil {
		return FailedIdentity
	}

	return scpi.FormatUint(uint64(uid))
}

// SelectPort picks exactly one candidate.
//
// With zero candidates it fails with [ErrNotFound]. With exactly one it
// selects that candidate regardless of selectors. With more than one, a
// non-empty portPath selects by exact path equality and a non-empty
// identity selects by exact identity equality (both may apply); exactly one
// candidate must remain, otherwise the selection fails with [ErrNotFound]
// or an [AmbiguousError].
func SelectPort(candidates []PortCandidate, portPath, identity string) (PortCandidate, error) {
	if len(candidates) == 0 {
		return PortCandidate{}, ErrNotFound
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	if portPath == "" && identity == "" {
		return PortCandidate{}, &AmbiguousError{Candidates: candidates}
	}

	remaining := make([]PortCandidate, 0, len(candidates))
	for _, c := range candidates {
		if portPath != "" && c.Path != portPath {
			continue
		}
		if identity != "" && c.Identity != identity {
			continue
		}
		remaining = append(remaining, c)
	}

	switch len(remaining) {
	case 0:
		return PortCandidate{}, fmt.Errorf("usmu: no device matches the given selectors: %w", ErrNotFound)
	case 1:
		return remaining[0], nil
	default:
		return PortCandidate{}, &AmbiguousError{Candidates: remaining}
	}
}

// Discover enumerates matching ports, disambiguates by the optional port
// path and identity selectors, and opens the selected device.
//
// Identities are probed only when needed for disambiguation, so the common
// single-device case opens the port once.
func Discover(portPath, identity string, opts ...DeviceOption) (*Device, error) {
	candidates, err := EnumeratePorts()
	if err != nil {
		return nil, err
	}

	if len(candidates) > 1 || identity != "" {
		ProbeIdentities(candidates, opts...)
	}

	selected, err := SelectPort(candidates, portPath, identity)
	if err != nil {
		return nil, err
	}

	logger.Debug("device selected", "path", selected.Path, "identity", selected.Identity)

	return Open(selected.Path, opts...)
}
