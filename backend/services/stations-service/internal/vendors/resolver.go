// Package vendors normalizes battery telemetry from the station hardware vendors.
package vendors

import "strings"

// Vendor identifies which hardware API serves a station.
type Vendor string

const (
	VendorZapp        Vendor = "zapp"
	VendorNexy        Vendor = "nexy"
	VendorUnsupported Vendor = "unsupported"
)

const (
	zappPrefix = "ZAPP"
	nexyPrefix = "NEXY"
)

// Resolve picks the vendor from the station id prefix. It is the only place that
// inspects the prefix.
func Resolve(stationID string) Vendor {
	switch {
	case strings.HasPrefix(stationID, zappPrefix):
		return VendorZapp
	case strings.HasPrefix(stationID, nexyPrefix):
		return VendorNexy
	default:
		return VendorUnsupported
	}
}

// MonitoredPrefixes lists the id prefixes of stations that have a vendor.
func MonitoredPrefixes() []string {
	return []string{zappPrefix, nexyPrefix}
}

func (v Vendor) String() string { return string(v) }
