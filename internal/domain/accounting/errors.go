package accounting

import "github.com/botforce/unity/internal/domain/shared"

// ErrExportLocked is returned when changing or deleting a locked export
var ErrExportLocked = shared.NewDomainError("EXPORT_LOCKED", "Export is locked")
