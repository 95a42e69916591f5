package assist

import "fmt"

// Names and descriptions are interpolated verbatim between literal quotes.

func DescriptionPrompt(projectName, clientName string) string {
	return fmt.Sprintf("Generate a professional and concise 2-sentence project description for a new project titled \"%s\" for client \"%s\". Focus on common goals for such a project.",
		projectName, clientName)
}

func LineItemsPrompt(projectName, projectDescription string) string {
	return fmt.Sprintf("Based on a project called \"%s\" with this description: \"%s\", suggest 3 potential invoice line items. Return them as a JSON array of objects with 'description' and 'estimatedRate' (number).",
		projectName, projectDescription)
}
