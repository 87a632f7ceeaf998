package config

//go:generate go tool go-enum --marshal --names --nocase

// Specification of requested export format.
// ENUM(rtf, epub)
type OutputFmt int

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtRtf:
		return ".rtf"
	case OutputFmtEpub:
		return ".epub"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// Specification of EPUB package identifier: hash is derived from book title
// and export time, uuid is random time ordered UUID.
// ENUM(hash, uuid)
type IDScheme int
