package agent

import (
	"fmt"
	"strings"
)

// IntegrationStatus reports whether a named external integration currently
// has a usable credential for the executing principal.
type IntegrationStatus struct {
	Name      string
	Connected bool
}

// toolFocus maps role keywords to the tool subset the directive steers the
// model toward. Guidance only: the full registry is always offered.
var toolFocus = []struct {
	keywords []string
	guidance string
}{
	{
		keywords: []string{"research"},
		guidance: "Focus on research: prefer web_search and fetch_webpage to gather and verify information.",
	},
	{
		keywords: []string{"email", "communication", "assistant"},
		guidance: "Focus on communication: prefer read_emails and send_email to handle correspondence.",
	},
	{
		keywords: []string{"calendar", "schedule"},
		guidance: "Focus on scheduling: prefer get_calendar_events and create_calendar_event to manage the calendar.",
	},
}

// buildDirective assembles the system directive for one execution: agent
// identity, integration connection status and soft role-based tool guidance.
func buildDirective(name, role string, integrations []IntegrationStatus) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, an autonomous agent.", name)
	if role != "" {
		fmt.Fprintf(&b, " Your role: %s.", role)
	}
	b.WriteString("\n\nYou complete the user's task by calling the available tools. ")
	b.WriteString("Call log_progress to report meaningful progress while working. ")
	b.WriteString("When the task is done, reply with a final text summary and no tool calls.\n")

	if len(integrations) > 0 {
		b.WriteString("\nIntegrations:\n")
		for _, integ := range integrations {
			status := "not connected"
			if integ.Connected {
				status = "connected"
			}
			fmt.Fprintf(&b, "- %s: %s\n", integ.Name, status)
		}
	}

	haystack := strings.ToLower(name + " " + role)
	matched := false
	for _, focus := range toolFocus {
		for _, kw := range focus.keywords {
			if strings.Contains(haystack, kw) {
				b.WriteString("\n" + focus.guidance)
				matched = true
				break
			}
		}
	}
	if !matched {
		b.WriteString("\nUse whichever tools best fit the task.")
	}

	return b.String()
}
