package ui

const StartText = "🍺 AlcoMeterBot - ваш персональний трекер випитого алкоголю!\n\n" +
	"📱 Записуйте кожен випитий напій через відео-кружечок, " +
	"відстежуйте свою статистику та змагайтеся з друзями.\n\n" +
	"🎯 Головні команди:\n" +
	"/add - Додати новий запис\n" +
	"/stats - Моя статистика\n" +
	"/top - Рейтинг користувачів\n\n" +
	"❓ Детальніше: /help"

const AdminStartSuffix = "\n\n🛡 Адміністратор:\n" +
	"/requests - Заявки на розгляд\n" +
	"/audit - Журнал модерації"

const HelpText = `📖 Довідка по використанню AlcoMeterBot:

🎯 Основні команди:
/start - Почати роботу з ботом
/help - Показати цю довідку
/types - Показати доступні типи алкоголю
/top - Показати топ користувачів
/add - Додати новий запис 👈
/cancel - Скасувати поточне додавання
/stats - Показати вашу статистику 📊
/history - Показати історію ваших записів 📜
/suggest - Запропонувати новий тип алкоголю
/tos - Показати умови використання

📝 Як додати запис:
1. Використайте команду /add
2. Надішліть відео-кружечок з доказом випитого алкоголю
3. Виберіть тип алкоголю зі списку
4. Виберіть підтип алкоголю
5. Вкажіть об'єм (можна вибрати зі стандартних або ввести свій)
6. Чекайте підтвердження від адміністратора

⚠️ Важливо:
- Приймаються тільки відео-кружечки
- Відео має чітко показувати процес вживання
- Об'єм вказується в мілілітрах
- Неправдиві дані будуть відхилені
- Незавершене додавання скидається через 5 хвилин`

const TOSText = `📜 Умови використання AlcoMeterBot:

1️⃣ Загальні положення:
- Бот призначений для розважальних цілей
- Користувач повинен бути повнолітнім (18+)
- Бот не пропагує надмірне вживання алкоголю

2️⃣ Конфіденційність:
- Ми зберігаємо тільки надані вами дані (нік, відео, об'єми)
- Відео доступні тільки адміністраторам для верифікації
- Публічно показуються лише загальні об'єми в рейтингу

3️⃣ Правила використання:
- Заборонено надсилати неправдиві дані
- Заборонено надсилати невідповідний контент
- Заборонено спамити та зловживати функціоналом

4️⃣ Відповідальність:
- Користувач несе повну відповідальність за свої дії
- Адміністрація може відхилити будь-який запис
- За порушення правил можливе блокування

5️⃣ Обмеження відповідальності:
- Бот не несе відповідальності за дії користувачів
- Ми не рекомендуємо надмірне вживання алкоголю
- Використовуйте бота відповідально

❗️ Використовуючи бота, ви погоджуєтеся з цими умовами`

// Submission flow.
const (
	SessionConflictText = "❌ У вас вже є активна сесія додавання запису.\n" +
		"Будь ласка, завершіть її або почекайте 5 хвилин для автоматичного скидання."
	AskEvidenceText = "🎥 Будь ласка, надішліть відео-кружечок з доказом випитого алкоголю.\n" +
		"⚠️ Приймаються тільки відео-кружечки!\n" +
		"⚠️ Відео має чітко показувати процес вживання!"
	OnlyVideoNotesText = "❌ Вибачте, але приймаються тільки відео-кружечки.\n" +
		"Будь ласка, надішліть ваше відео у форматі відео-кружечка."
	NoSessionText       = "❌ Будь ласка, спочатку використайте команду /add для початку додавання запису."
	SessionExpiredText  = "❌ Сесія закінчилася. Будь ласка, почніть знову з /add."
	ChooseCategoryText  = "🍷 Виберіть тип алкоголю:"
	ChooseVolumeText    = "🔢 Виберіть об'єм або введіть свій:"
	AskCustomVolumeText = "📝 Введіть об'єм в мілілітрах (наприклад: 750):"
	InvalidVolumeText   = "❌ Будь ласка, введіть коректне число в мілілітрах (наприклад: 750)"
	WrongStepText       = "❌ Ця кнопка вже неактуальна."
	CancelledText       = "🗑 Додавання запису скасовано."
	NothingToCancelText = "ℹ️ Немає чого скасовувати."
	CustomVolumeButton  = "Інший об'єм"
)

// Suggestion flow.
const (
	AskSuggestionNameText     = "1️⃣ Введіть назву нового типу алкоголю:"
	AskSuggestionStrengthText = "2️⃣ Введіть міцність напою у відсотках (наприклад: 40):"
	AskSuggestionSubtypesText = "3️⃣ Введіть підтипи напою через кому (наприклад: Світле, Темне, Нефільтроване):"
	InvalidSuggestionNameText = "❌ Назва має містити від 1 до 64 символів."
	InvalidStrengthText       = "❌ Будь ласка, введіть коректне число від 1 до 100."
	InvalidSubtypesText       = "❌ Вкажіть хоча б один підтип через кому."
	SuggestionThanksText      = "✅ Дякуємо за пропозицію! Вона буде розглянута адміністраторами."
)

// Moderation.
const (
	AdminOnlyText       = "❌ Ця команда доступна тільки адміністраторам!"
	AdminOnlyActionText = "❌ Ця дія доступна тільки адміністраторам!"
	QueueEmptyText      = "📭 Немає активних заявок на розгляд."
	AlreadyResolvedText = "⚠️ Цю заявку вже розглянуто іншим адміністратором."
	ApproveButton       = "✅ Підтвердити"
	RejectButton        = "❌ Відхилити"
	AcceptButton        = "✅ Прийняти"
	PauseButton         = "⏸️ Призупинити сповіщення"
	ResumeButton        = "▶️ Відновити сповіщення"
	ApprovedSuffix      = "\n\n✅ Підтверджено!"
	UserApprovedText    = "🎉 Ваш запис було підтверджено адміністратором!"
	UserRejectedText    = "❌ Ваш запис було відхилено адміністратором."
	PausedSuffix        = "\n\n⏸️ Сповіщення призупинено!"
	ResumedSuffix       = "\n\n▶️ Сповіщення відновлено!"
	EmptyAuditText      = "📭 Журнал модерації порожній."
)

// Stats.
const (
	NoHistoryText     = "📭 У вас поки що немає записів."
	NoLeaderboardText = "📊 Поки що немає даних для відображення."
	UnknownText       = "🤔 Не зрозумів. Скористайтеся /help, щоб побачити доступні команди."
	InternalErrorText = "⚠️ Щось пішло не так. Спробуйте пізніше."
)
