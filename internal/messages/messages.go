// Package messages holds every user-facing text of the bot.
package messages

const (
	Start = "Привет! Я бот для получения прогноза прибытия транспорта.\n\n" +
		"Доступные команды:\n" +
		"/search <название> - поиск остановок по названию\n" +
		"/stop <id> - получить прогноз по ID остановки\n" +
		"/platform <id> - прогноз по ID платформы\n" +
		"/routes - список типов маршрутов\n" +
		"/route <номер> - информация о конкретном маршруте\n\n" +
		"или просто отправьте название остановки для поиска."

	Help = "Как пользоваться ботом:\n\n" +
		"1. Поиск остановок:\n" +
		"   /search <название> - поиск остановок по названию\n" +
		"   Пример: /search площадь ленина\n\n" +
		"2. Получение прогноза:\n" +
		"   /stop <id> - прогноз по ID остановки\n" +
		"   Пример: /stop 142\n" +
		"   или просто #142\n\n" +
		"3. Просмотр маршрутов:\n" +
		"   /routes - список всех маршрутов\n" +
		"   /route <номер> - информация о маршруте"

	NoStopsFound   = "Остановки не найдены. Попробуйте другой поисковый запрос."
	NoRouteFound   = "Маршрут с таким номером не найден."
	NoStopFound    = "Остановка с таким ID не найдена."
	NoForecastData = "Нет данных о прибытии транспорта на эту остановку."
	DataLoadError  = "Ошибка: не удалось загрузить данные. Попробуйте позже или используйте команду /refresh"
	GeneralError   = "Произошла ошибка при получении данных. Попробуйте позже."
	BotError       = "Произошла внутренняя ошибка бота. Попробуйте позже."
	UnknownStop    = "Неизвестная остановка"
	EmptyText      = "Пожалуйста, введите название остановки для поиска."

	// format verbs: stop id
	StopIDNotFound = "Остановка #%s не найдена.\n" +
		"Проверьте номер остановки или воспользуйтесь поиском по названию."

	// format verbs: match count
	TooManyResults = "Найдено несколько (%d шт.) остановок. Уточните запрос.\n\n" +
		"Примеры:\n" +
		"- Добавьте больше слов из названия\n" +
		"- Используйте номер дома или название улицы\n" +
		"- Добавьте район или ориентир"

	SearchTips = "Подсказка: можно ввести часть названия, например:\n" +
		"- \"ленина\"\n" +
		"- \"площадь маркса\"\n" +
		"- \"студенческая\"\n\n" +
		"Или используйте номер остановки: #142"

	// format verbs: stops list, example id
	MultipleStops = "Найдено несколько остановок:\n\n%s\n\n" +
		"Выберите нужную остановку и используйте команду /stop <id> для получения прогноза.\n" +
		"Например: /stop %s"

	// format verbs: platform id
	PlatformError = " ⚠️ Ошибка получения данных для платформы #%s"

	// format verbs: transport full name, title, begin, end, fare
	RouteInfo = "%s\nМаршрут: %s\nНаправление: %s - %s\nСтоимость проезда: %s ₽"

	// format verbs: transport full name, route count, numbers
	RoutesByType = "%s: %d маршрутов\nНомера: %s\n\n"

	StopLine       = "%d. 🚏 %s #%s\n"
	StopsFound     = "Найдено остановок: %d\n\n"
	MoreStops      = "\n...и ещё %d остановок"
	PlatformLine   = "   %c) Платформа #%s\n"
	PlatformHeader = "Платформа #%s:\n\n"
	RoutesFound    = "Найдено маршрутов с номером %s:\n\n"
	NoRoutesData   = "Нет данных о маршрутах. Попробуйте использовать команду /refresh для обновления данных."
	RoutesSummary  = "Типы маршрутов:\n\n"
	RoutesFooter   = "\nДля получения информации о конкретном маршруте используйте команду:\n/route <номер>"
	SearchUsage    = "Пожалуйста, укажите название остановки для поиска.\nПример: /search площадь ленина"
	StopUsage      = "Пожалуйста, укажите ID остановки.\nПример: /stop 142"
	PlatformUsage  = "Пожалуйста, укажите ID платформы.\nПример: /platform 500"
	RouteUsage     = "Пожалуйста, укажите номер маршрута.\nПример: /route 13"
	UnknownUser    = "Ошибка: не удалось определить пользователя"
	AccessDenied   = "⛔ У вас нет доступа к этой команде."
	RefreshStart   = "Обновляю данные об остановках и маршрутах..."
	RefreshSuccess = "✅ Данные успешно обновлены\n- Загружено остановок: %d\n- Загружено маршрутов: %d"
	RefreshError   = "❌ Ошибка при обновлении данных"
	Now            = "сейчас"
	MinutesUnit    = "мин"
	ArrivesIn      = "через"
)
