package recurring

import "github.com/botforce/unity/internal/domain/shared"

var (
	ErrTemplateNotDue   = shared.NewDomainError("TEMPLATE_NOT_DUE", "Template is inactive or not due yet")
	ErrPeriodInProgress = shared.NewDomainError("TEMPLATE_PERIOD_IN_PROGRESS", "This period is already being generated")
)
