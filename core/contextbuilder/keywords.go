package contextbuilder

// Keyword lists are bilingual (English/Spanish) and matched by substring
// against lower-cased message content.

var topicKeywords = []string{
	"price", "precio",
	"quote", "cotizacion",
	"delivery", "envio",
	"invoice", "factura",
	"payment", "pago",
	"meeting", "reunion",
	"demo",
	"support", "soporte",
	"warranty", "garantia",
	"discount", "descuento",
	"stock", "inventario",
	"contract", "contrato",
}

var positiveKeywords = []string{
	"thanks", "thank you", "gracias",
	"great", "excelente", "perfecto", "perfect",
	"love", "me encanta",
	"good", "bueno", "genial",
	"yes", "si quiero",
	"interested", "me interesa",
}

var negativeKeywords = []string{
	"bad", "malo",
	"terrible", "horrible",
	"angry", "molesto", "enojado",
	"cancel", "cancelar",
	"refund", "reembolso",
	"complaint", "queja",
	"no me gusta", "disappointed", "decepcionado",
	"problem", "problema",
}
