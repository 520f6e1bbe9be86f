package vanilla

// ChromeClass is a typed identifier for semantic page CSS classes.
type ChromeClass string

const (
	ClassPage    ChromeClass = "cropadvice-page"
	ClassHeader  ChromeClass = "cropadvice-header"
	ClassCard    ChromeClass = "cropadvice-card"
	ClassImage   ChromeClass = "cropadvice-image"
	ClassAdvice  ChromeClass = "cropadvice-advice"
	ClassUpload  ChromeClass = "cropadvice-upload"
	ClassErrors  ChromeClass = "cropadvice-errors"
	ClassActions ChromeClass = "cropadvice-actions"
)

func chromeClasses() map[string]string {
	return map[string]string{
		"page":    string(ClassPage),
		"header":  string(ClassHeader),
		"card":    string(ClassCard),
		"image":   string(ClassImage),
		"advice":  string(ClassAdvice),
		"upload":  string(ClassUpload),
		"errors":  string(ClassErrors),
		"actions": string(ClassActions),
	}
}
