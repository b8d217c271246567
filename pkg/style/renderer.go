package style

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
)

// Renderer turns maintenance run events into output lines.
type Renderer interface {
	// RenderBanner marks the start of work on a repository.
	RenderBanner(repo string) string
	// RenderBookError reports a failure that aborted one repository.
	RenderBookError(repo string, err error) string
	// RenderHint suggests a fix under a failure.
	RenderHint(hint string) string
	// RenderPlan lists what a push run would remove.
	RenderPlan(kind string, items []string) string
	RenderSuccess(msg string) string
	RenderWarning(msg string) string
	RenderError(err error) string
	// RenderSummary reports the outcome of a run over several books.
	RenderSummary(total, failed int) string
}

// BannerText is the plain banner line for repo.
func BannerText(repo string) string {
	return fmt.Sprintf("========> %s <========", repo)
}

// PlanText is the plain "Would remove" line for items.
func PlanText(items []string) string {
	return fmt.Sprintf("Would remove [%s]", strings.Join(items, " "))
}

// TerminalRenderer implements Renderer with rich terminal output
type TerminalRenderer struct{}

// NewTerminalRenderer creates a new terminal renderer
func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{}
}

func (r *TerminalRenderer) RenderBanner(repo string) string {
	return BannerStyle.Render(BannerText(repo))
}

func (r *TerminalRenderer) RenderBookError(repo string, err error) string {
	return ErrorStyle.Render(fmt.Sprintf("%s: %v", repo, err))
}

func (r *TerminalRenderer) RenderHint(hint string) string {
	return Indent(fmt.Sprintf("%s %s", InfoIndicator, MutedStyle.Render(hint)), 1)
}

func (r *TerminalRenderer) RenderPlan(kind string, items []string) string {
	itemStyle := MutedStyle
	switch kind {
	case "branches":
		itemStyle = BranchStyle
	case "tags":
		itemStyle = TagStyle
	}
	styled := make([]string, len(items))
	for i, item := range items {
		styled[i] = itemStyle.Render(item)
	}
	return fmt.Sprintf("%s %s", PendingIndicator, PlanText(styled))
}

func (r *TerminalRenderer) RenderSuccess(msg string) string {
	return fmt.Sprintf("%s %s", SuccessIndicator, Render(msg))
}

func (r *TerminalRenderer) RenderWarning(msg string) string {
	return fmt.Sprintf("%s %s", pterm.Warning.Prefix.Text, Render(msg))
}

// RenderError renders an error message
func (r *TerminalRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s %s", pterm.Error.Prefix.Text, pterm.Error.MessageStyle.Sprint(err.Error()))
}

func (r *TerminalRenderer) RenderSummary(total, failed int) string {
	if failed == 0 {
		return fmt.Sprintf("%s %s", SuccessIndicator, SuccessStyle.Render(fmt.Sprintf("%d book(s) processed", total)))
	}
	return fmt.Sprintf("%s %s", ErrorIndicator,
		ErrorStyle.Render(fmt.Sprintf("%d of %d book(s) failed", failed, total)))
}

// PlainRenderer implements Renderer with plain text output (no styling)
type PlainRenderer struct{}

// NewPlainRenderer creates a new plain text renderer
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

func (r *PlainRenderer) RenderBanner(repo string) string {
	return BannerText(repo)
}

func (r *PlainRenderer) RenderBookError(repo string, err error) string {
	return fmt.Sprintf("%s: %v", repo, err)
}

func (r *PlainRenderer) RenderHint(hint string) string {
	return Indent("hint: "+hint, 1)
}

func (r *PlainRenderer) RenderPlan(kind string, items []string) string {
	return PlanText(items)
}

func (r *PlainRenderer) RenderSuccess(msg string) string {
	return Strip(msg)
}

func (r *PlainRenderer) RenderWarning(msg string) string {
	return "Warning: " + Strip(msg)
}

// RenderError renders a plain error message
func (r *PlainRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %s", err.Error())
}

func (r *PlainRenderer) RenderSummary(total, failed int) string {
	if failed == 0 {
		return fmt.Sprintf("%d book(s) processed", total)
	}
	return fmt.Sprintf("%d of %d book(s) failed", failed, total)
}
