package notify

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/phrazzld/taskroster-api/internal/domain"
)

const (
	dateTimeLayout = "2006-01-02 15:04"
	dateLayout     = "2006-01-02"
)

var templateFuncs = template.FuncMap{
	"datetime": func(t *time.Time) string {
		if t == nil {
			return "unscheduled"
		}
		return t.UTC().Format(dateTimeLayout)
	},
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.UTC().Format(dateLayout)
	},
	"repeats": repeatPhrase,
}

const detailsTemplate = "*Title:* {{.Title}}\n*Description:* {{.Description}}"

// One template per task type and frequency.
var templateSources = map[string]string{
	templateKey(domain.TaskTypeImmediate, domain.FrequencyOneTime): "🚀 *New Immediate Task*\n\n" +
		`{{template "details" .}}` + "\n*Priority:* High",
	templateKey(domain.TaskTypeImmediate, domain.FrequencyRepeated): "🔁 *New Recurring Task*\n\n" +
		`{{template "details" .}}` + "\n*Repeats:* {{repeats .}}" +
		"{{with .RepeatEndDate}}\n*Until:* {{date .}}{{end}}",
	templateKey(domain.TaskTypeCustom, domain.FrequencyOneTime): "📅 *Scheduled Task*\n\n" +
		`{{template "details" .}}` + "\n*Scheduled for:* {{datetime .ScheduledDate}}",
	templateKey(domain.TaskTypeCustom, domain.FrequencyRepeated): "📅 *Scheduled Recurring Task*\n\n" +
		`{{template "details" .}}` + "\n*Starts:* {{datetime .ScheduledDate}}\n*Repeats:* {{repeats .}}" +
		"{{with .RepeatEndDate}}\n*Until:* {{date .}}{{end}}",
}

var messageTemplates = parseTemplates()

func parseTemplates() *template.Template {
	root := template.Must(template.New("details").Funcs(templateFuncs).Parse(detailsTemplate))
	for name, src := range templateSources {
		template.Must(root.New(name).Parse(src))
	}
	return root
}

func templateKey(t domain.TaskType, f domain.Frequency) string {
	return string(t) + "/" + string(f)
}

// RenderMessage builds the WhatsApp text announcing task to its assignee.
// Unknown type or frequency values fall back to the immediate one-time layout.
func RenderMessage(task *domain.Task) string {
	name := templateKey(task.Type, task.Frequency)
	if messageTemplates.Lookup(name) == nil {
		name = templateKey(domain.TaskTypeImmediate, domain.FrequencyOneTime)
	}

	var buf bytes.Buffer
	if err := messageTemplates.ExecuteTemplate(&buf, name, task); err != nil {
		return fmt.Sprintf("New task: %s", task.Title)
	}
	return buf.String()
}

// repeatPhrase renders e.g. "every 3 days" or "every week".
func repeatPhrase(task *domain.Task) string {
	if task.RepeatInterval == nil {
		return "on a schedule"
	}
	unit := string(*task.RepeatInterval)
	if task.RepeatCount == nil || *task.RepeatCount == 1 {
		return "every " + strings.TrimSuffix(unit, "s")
	}
	return fmt.Sprintf("every %d %s", *task.RepeatCount, unit)
}
