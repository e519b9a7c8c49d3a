package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nestor-churin/AlcoMeterBot/internal/catalog"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/enums"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/model"
)

const (
	dateLayout   = "02.01.2006 15:04"
	messageLimit = 3600
)

func RenderStart(role enums.Role) (string, [][]string) {
	text := StartText
	if role == enums.RoleAdmin {
		text += AdminStartSuffix
	}
	return text, MenuByRole(role)
}

// Renderer formats domain values for chat. It resolves category names from
// the catalog and prints times in the configured zone.
type Renderer struct {
	catalog *catalog.Catalog
	loc     *time.Location
}

func NewRenderer(cat *catalog.Catalog, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{catalog: cat, loc: loc}
}

func (r *Renderer) Date(t time.Time) string {
	return t.In(r.loc).Format(dateLayout)
}

// FormatVolume prints millilitres as "Xл Yмл", or "Yмл" under a litre.
func FormatVolume(ml int64) string {
	liters := ml / 1000
	rest := ml % 1000
	if liters > 0 {
		return fmt.Sprintf("%dл %dмл", liters, rest)
	}
	return fmt.Sprintf("%dмл", rest)
}

func FormatStrength(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (r *Renderer) Types() string {
	var b strings.Builder
	b.WriteString("📋 Доступні типи алкоголю:\n\n")
	for _, cat := range r.catalog.Categories() {
		fmt.Fprintf(&b, "🍷 %s (%s%%)\n", cat.Name, FormatStrength(cat.Strength))
		fmt.Fprintf(&b, "└ Підтипи: %s\n", strings.Join(cat.Subtypes, ", "))
	}
	return b.String()
}

func (r *Renderer) Stats(stats model.UserStats) string {
	var b strings.Builder
	b.WriteString("📊 Ваша персональна статистика:\n\n")
	fmt.Fprintf(&b, "📝 Всього записів: %d\n", stats.Records)
	fmt.Fprintf(&b, "🥃 Загальний об'єм: %s\n", FormatVolume(stats.ApprovedVolumeML))
	fmt.Fprintf(&b, "💪 Чистого спирту: %.1fмл\n", stats.PureAlcoholML)
	fmt.Fprintf(&b, "📅 Сьогодні / тиждень / місяць: %s / %s / %s\n\n",
		FormatVolume(stats.Periods.Day), FormatVolume(stats.Periods.Week), FormatVolume(stats.Periods.Month))

	if len(stats.ByCategory) == 0 {
		b.WriteString("🔹 У вас ще немає затверджених записів. Додайте свій перший запис!")
		return b.String()
	}

	b.WriteString("🍷 По типам напоїв:\n")
	for _, cs := range stats.ByCategory {
		if cs.VolumeML == 0 {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s (%d записів)\n", r.catalog.Name(cs.Category), FormatVolume(cs.VolumeML), cs.Records)
	}
	return b.String()
}

func statusEmoji(status enums.Status) string {
	switch status {
	case enums.StatusPending:
		return "⏳"
	case enums.StatusApproved:
		return "✅"
	case enums.StatusRejected:
		return "❌"
	default:
		return "❓"
	}
}

func (r *Renderer) History(records []model.Submission) string {
	if len(records) == 0 {
		return NoHistoryText
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📜 Останні %d записів:\n\n", len(records))
	for _, rec := range records {
		fmt.Fprintf(&b, "%s\n", r.Date(rec.CreatedAt))
		fmt.Fprintf(&b, "%s %s (%s)\n", statusEmoji(rec.Status), r.catalog.Name(rec.Category), rec.Subtype)
		fmt.Fprintf(&b, "└ %dмл, %s%%\n\n", rec.VolumeML, FormatStrength(rec.Strength))
	}
	return strings.TrimRight(b.String(), "\n")
}

func Leaderboard(entries []model.LeaderboardEntry) string {
	if len(entries) == 0 {
		return NoLeaderboardText
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 Топ-%d по випитому:\n\n", len(entries))
	for i, entry := range entries {
		fmt.Fprintf(&b, "%d. %s: %s (чистого спирту: %.1fмл)\n",
			i+1,
			userLabel(entry.UserID, entry.Username),
			FormatVolume(entry.VolumeML),
			entry.PureAlcoholML,
		)
	}
	return b.String()
}

func (r *Renderer) SubtypePrompt(cat catalog.Category) string {
	return fmt.Sprintf("🥃 Виберіть підтип %s:", cat.Name)
}

func (r *Renderer) SubmissionSaved(rec model.Submission) string {
	return "✅ Запис збережено і відправлено на підтвердження адміністратору!\n" +
		r.submissionDetails(rec, "", "")
}

// SubmissionCard is what admins get with a new submission.
func (r *Renderer) SubmissionCard(rec model.Submission) string {
	return fmt.Sprintf("🆕 Новий запис на підтвердження!\n👤 Користувач: %s\n", userLabel(rec.UserID, rec.Username)) +
		r.submissionDetails(rec, "🍷 ", "📝 ")
}

// QueueCard is one entry of the pending queue listing.
func (r *Renderer) QueueCard(rec model.Submission) string {
	return fmt.Sprintf("📝 Заявка #%d\n📅 Дата: %s\n👤 Користувач: %s\n", rec.ID, r.Date(rec.CreatedAt), userLabel(rec.UserID, rec.Username)) +
		r.submissionDetails(rec, "🍷 ", "📝 ")
}

func (r *Renderer) submissionDetails(rec model.Submission, typeIcon, subtypeIcon string) string {
	volumeIcon, strengthIcon := "", ""
	if typeIcon != "" {
		volumeIcon, strengthIcon = "🔢 ", "💪 "
	}
	return fmt.Sprintf("%sТип: %s\n%sПідтип: %s\n%sОб'єм: %dмл\n%sМіцність: %s%%",
		typeIcon, r.catalog.Name(rec.Category),
		subtypeIcon, rec.Subtype,
		volumeIcon, rec.VolumeML,
		strengthIcon, FormatStrength(rec.Strength),
	)
}

func QueueSummary(n int) string {
	return fmt.Sprintf("📋 Всього активних заявок: %d", n)
}

func (r *Renderer) SuspendedText(until time.Time) string {
	return fmt.Sprintf("❌ Ви заблоковані до %s!\nСпробуйте пізніше.", r.Date(until))
}

func (r *Renderer) banLine(s *model.Suspension) string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("\n\n🚫 Користувача заблоковано до %s", r.Date(s.ActiveUntil))
}

func (r *Renderer) RejectedSuffix(rejectedCount int, s *model.Suspension) string {
	return fmt.Sprintf("\n\n❌ Відхилено!\n📊 Всього відхилень: %d", rejectedCount) + r.banLine(s)
}

func (r *Renderer) UserRejectedNotice(s *model.Suspension) string {
	if s == nil {
		return UserRejectedText
	}
	return UserRejectedText + "\n" + r.banLine(s)
}

func SuggestionCard(sg model.Suggestion) string {
	return fmt.Sprintf("🆕 Нова пропозиція типу алкоголю!\n\n👤 Від користувача: %s\n🍷 Назва: %s\n💪 Міцність: %s%%\n📝 Підтипи: %s",
		userLabel(sg.UserID, sg.Username),
		sg.Name,
		FormatStrength(sg.Strength),
		strings.Join(sg.Subtypes, ", "),
	)
}

func SuggestionDecisionSuffix(sg model.Suggestion) string {
	if sg.Status == enums.StatusApproved {
		return "\n\n✅ Прийнято!"
	}
	return "\n\n❌ Відхилено!"
}

func SuggestionResultNotice(sg model.Suggestion) string {
	if sg.Status == enums.StatusApproved {
		return fmt.Sprintf("🎉 Вашу пропозицію «%s» прийнято адміністратором!", sg.Name)
	}
	return fmt.Sprintf("❌ Вашу пропозицію «%s» відхилено адміністратором.", sg.Name)
}

func PauseSuffix(paused bool) string {
	if paused {
		return PausedSuffix
	}
	return ResumedSuffix
}

// Audit renders entries newest first, split into chat-sized chunks.
func Audit(entries []model.Audit) []string {
	if len(entries) == 0 {
		return []string{EmptyAuditText}
	}

	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, fmt.Sprintf("🧾 Журнал модерації (останні %d):", len(entries)))
	for _, entry := range entries {
		payload := strings.TrimSpace(string(entry.Payload))
		if payload == "" {
			payload = "{}"
		}
		lines = append(lines, fmt.Sprintf(
			"%s | %s | actor=%d | %s",
			entry.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			entry.Action,
			entry.ActorID,
			payload,
		))
	}
	return SplitByLength(lines, messageLimit)
}

// SplitByLength joins lines into chunks no longer than limit bytes. A single
// longer line becomes its own chunk.
func SplitByLength(lines []string, limit int) []string {
	var chunks []string
	var current strings.Builder
	for _, line := range lines {
		if current.Len() > 0 && current.Len()+1+len(line) > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func userLabel(id int64, username string) string {
	name := strings.TrimSpace(username)
	if name != "" {
		return name
	}
	return strconv.FormatInt(id, 10)
}
