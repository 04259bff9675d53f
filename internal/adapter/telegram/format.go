package telegram

import (
	"fmt"
	"strings"

	"warehouse-assistant-bot/internal/domain"
	"warehouse-assistant-bot/internal/usecase/inventory"
)

// FormatTurn renders the answer followed by its confidence block.
func FormatTurn(turn domain.Turn) string {
	var b strings.Builder
	b.WriteString("🤖 ")
	b.WriteString(turn.Assistant.Content)
	b.WriteString("\n\n📊 Confidence: ")
	b.WriteString(domain.FormatScore(turn.Confidence.Score))
	b.WriteString("%\nReport: ")
	b.WriteString(turn.Confidence.Report)
	return b.String()
}

func FormatActivity(entries []domain.ActivityEntry) string {
	if len(entries) == 0 {
		return "🕒 Activity Log\nNo activity yet."
	}
	var b strings.Builder
	b.WriteString("🕒 Activity Log")
	for _, e := range entries {
		b.WriteString("\n• ")
		b.WriteString(e.Text)
	}
	return b.String()
}

func FormatModes(current domain.Mode) string {
	var b strings.Builder
	b.WriteString("🤖 Assistant mode: ")
	b.WriteString(string(current))
	b.WriteString("\nChoose with /mode <name>:")
	for _, m := range domain.Modes {
		b.WriteString("\n• ")
		b.WriteString(string(m))
	}
	return b.String()
}

func FormatLowStock(items []inventory.StockItem) string {
	if len(items) == 0 {
		return fmt.Sprintf("✅ No items below %d units.", inventory.LowStockThreshold)
	}
	var b strings.Builder
	b.WriteString("⚠️ Low Stock Items:")
	for _, it := range items {
		fmt.Fprintf(&b, "\n• %s | %s | %s", orDash(it.SKU), orDash(it.Product), domain.FormatScore(it.Quantity))
	}
	return b.String()
}

func FormatUpload(snap inventory.Snapshot) string {
	return fmt.Sprintf("✅ Inventory loaded: %s (%d records, columns: %s)",
		snap.Name, snap.Rows, strings.Join(snap.Columns, ", "))
}

func FormatStatus(sess *domain.Session, snap inventory.Snapshot, loaded bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🤖 Mode: %s\n", sess.Mode())
	switch {
	case loaded && sess.Snapshot() == "":
		fmt.Fprintf(&b, "📦 Records: %d from %s (shared)\n", snap.Rows, snap.Name)
	case loaded:
		fmt.Fprintf(&b, "📦 Records: %d from %s\n", snap.Rows, snap.Name)
	default:
		b.WriteString("📦 Records: none loaded\n")
	}
	fmt.Fprintf(&b, "💬 Messages: %d", len(sess.Messages()))
	return b.String()
}

func helpText(mode domain.Mode) string {
	return fmt.Sprintf(`🏭 Warehouse AI Assistant (%s mode)

Send a CSV file to load inventory or shipment records, then ask questions about them.

Rules:
• Answers use only the uploaded inventory & shipment data
• No hallucinations: missing data is reported as "%s"

Commands:
/mode <inventory|shipment|multi-task> switch assistant
/clear clear the chat history
/refresh reload the retriever and model
/log show recent activity
/lowstock list items below %d units
/status show session status`, mode, domain.DataNotAvailable, inventory.LowStockThreshold)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
