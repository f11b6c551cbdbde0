package invoicing

import "github.com/botforce/unity/internal/domain/shared"

var (
	ErrDocumentNotDraft        = shared.NewDomainError("DOCUMENT_NOT_DRAFT", "Only draft documents can be issued")
	ErrDocumentLocked          = shared.NewDomainError("DOCUMENT_LOCKED", "Document is locked and cannot be modified")
	ErrEmptyDocument           = shared.NewDomainError("EMPTY_DOCUMENT", "Document must have at least one line")
	ErrDuplicateDocumentNumber = shared.NewDomainError("DUPLICATE_DOCUMENT_NUMBER", "Document number is already taken")
)
