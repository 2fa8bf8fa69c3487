package session

// Status lines and notices shown on the form surface.
const (
	StatusWaiting             = "⏳ Esperando acción del usuario..."
	StatusRealTime            = "📍 Usando ubicación en tiempo real"
	StatusRegisteredAddressF  = "📍 Tu dirección registrada: %s"
	StatusLocationUnavailable = "⚠️ Ubicación no disponible. Por favor, activa GPS."
	StatusRosterFailed        = "❌ No se pudieron cargar los datos de la comunidad."
	StatusSending             = "🔄 Enviando alerta..."
	StatusGreetingF           = "👋 Hola %s en %s"
	StatusCommunityF          = "👥 Comunidad detectada: %s"

	NoticeMissingCommunity   = "❌ No se especificó la comunidad en la URL."
	NoticeMissingData        = "❌ Faltan datos necesarios"
	NoticeInvalidDescription = "❌ La descripción debe tener entre 4 y 300 caracteres."
	NoticeLiveLocationFailed = "❌ No se pudo obtener ubicación en tiempo real. Usando tu ubicación registrada."
	NoticeSubmitFailed       = "❌ Error al enviar alerta. Consulta el registro para más detalles."
	NoticeSubmitOK           = "✅ Alerta enviada correctamente."

	LabelIdle    = "🚨 Enviar Alerta Roja"
	LabelSending = "Enviando..."
)

const (
	minDescription = 4
	maxDescription = 300
)
