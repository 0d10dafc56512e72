package importrun

import "errors"

var (
	ErrRunAlreadyActive = errors.New("another recurring import is running")

	ErrLoginUserMissing  = errors.New("no api login user found")
	ErrLanguagesMissing  = errors.New("no languages configured")
	ErrSourceMissing     = errors.New("neither asset file nor any class / field mappings found")
	ErrInvalidMapping    = errors.New("mapping not valid, either class or fields mapping missing")
	ErrUnknownClass      = errors.New("catalog class not found")
	ErrInvalidColumns    = errors.New("file does not contain valid columns")
	ErrNoMatchingRecords = errors.New("no records found")

	ErrMissingReferenceMapping   = errors.New("reference field mapping missing")
	ErrReferenceResolutionFailed = errors.New("reference could not be resolved")
	ErrFieldReadFailed           = errors.New("field could not be read")
	ErrNoLookupKey               = errors.New("no url found")
)
