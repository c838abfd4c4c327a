package tables

import "context"

// Format names the on-disk table dialect a Provider should parse.
type Format string

const (
	FormatBUFRDC  Format = "bufrdc"
	FormatECCodes Format = "eccodes"
	FormatLibDWD  Format = "libdwd"
)

// Key identifies one version of the table set: keyed by master table,
// master version, local version, centre and sub-centre.
type Key struct {
	Master        int
	MasterVersion int
	LocalVersion  int
	Centre        int
	SubCentre     int
	Root          string
	Format        Format
}

// Provider is the external table loader contract: given a Key it
// returns a populated Registry. The decoder core (internal/walk,
// internal/extract) never constructs a Registry itself; it only
// consumes one handed to it by a Provider.
type Provider interface {
	Get(ctx context.Context, key Key) (*Registry, error)
}
