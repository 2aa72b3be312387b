package account

// Account storage overhead charged on top of the data length.
const storageOverhead = 128

// Rent describes the rent-exemption policy of the host.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  uint64
}

// DefaultRent mirrors the mainnet defaults: 3480 lamports per byte-year, two
// years to be exempt.
var DefaultRent = Rent{LamportsPerByteYear: 3480, ExemptionThreshold: 2}

// MinimumBalance returns the lamports an account of dataLen bytes needs to be
// rent exempt.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	return (storageOverhead + uint64(dataLen)) * r.LamportsPerByteYear * r.ExemptionThreshold
}

// IsExempt reports whether lamports cover the minimum for dataLen.
func (r Rent) IsExempt(lamports uint64, dataLen int) bool {
	return lamports >= r.MinimumBalance(dataLen)
}
