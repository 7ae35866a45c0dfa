package infer

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a professional Formula 1 race engineer providing real-time advice to a driver during a race.
You have access to live telemetry data and should provide concise, actionable feedback.
Keep responses brief (under 50 words) and focused on immediate actions or insights.`

// SystemPrompt returns the engineer persona instruction shared by all
// backends.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt renders the driver question, preceded by the race context block
// when one is available.
func UserPrompt(req *Request) string {
	var b strings.Builder
	if !req.Context.Empty() {
		fmt.Fprintf(&b, "Current Race Data:\n%s\n\n", req.Context.Text)
	}
	fmt.Fprintf(&b, "Driver Question: %s", req.Query)
	return b.String()
}
