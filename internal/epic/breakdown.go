package epic

import (
	"context"
	"fmt"
	"strings"
)

// breakdownResponse is the JSON shape the task-breakdown agent replies with.
type breakdownResponse struct {
	Overview string   `json:"overview"`
	Tasks    []string `json:"tasks"`
}

// decompose turns the approved plan into a shared overview and an ordered
// list of self-contained tasks. An empty breakdown aborts the whole run;
// nothing is executed partially.
func (e *Engine) decompose(ctx context.Context, plan string) (string, []string, error) {
	raw, err := e.invoke(ctx, "breakdown", buildBreakdownPrompt(plan))
	if err != nil {
		return "", nil, err
	}

	var br breakdownResponse
	if err := decodeJSONBlock(raw, &br); err != nil {
		return "", nil, fmt.Errorf("unreadable breakdown response: %w", err)
	}

	var tasks []string
	for _, t := range br.Tasks {
		if s := strings.TrimSpace(t); s != "" {
			tasks = append(tasks, s)
		}
	}
	if len(tasks) == 0 {
		return "", nil, fmt.Errorf("task breakdown returned no tasks")
	}

	return strings.TrimSpace(br.Overview), tasks, nil
}
