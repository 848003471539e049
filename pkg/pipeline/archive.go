package pipeline

import (
	"github.com/eduplan/seatplan/pkg/credentials"
	"github.com/eduplan/seatplan/pkg/render/plan/sink"
	"github.com/eduplan/seatplan/pkg/seating"
)

// ArchiveRequest asks for one credential card per occupant.
type ArchiveRequest struct {
	Occupants []seating.Occupant
	Metadata  seating.Metadata
	Format    sink.CardFormat

	// Issuer generates logins and passwords. Nil means a default issuer.
	Issuer *credentials.Issuer
}

// ArchiveResult is a rendered credential archive.
type ArchiveResult struct {
	// ID retrieves the archive again through [Runner.FetchArchive] while it
	// is cached.
	ID string

	Data        []byte
	Format      sink.CardFormat
	Credentials []credentials.Credential
}

// ArchiveName returns the download file name of the archive.
func (r *ArchiveResult) ArchiveName() string {
	return "credentials-" + string(r.Format) + ".zip"
}
