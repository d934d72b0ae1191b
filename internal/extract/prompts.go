package extract

// The extractor is told the exact vocabulary normalization will accept.
// Anything it invents outside these lists is rejected downstream, so the
// prompt and the domain enums must stay in lockstep.

const extractFunctionName = "extract_transaction"

const systemPrompt = "Eres Clara, un asistente experto en gestión agrícola que extrae datos de mensajes. " +
	"Analiza el mensaje de texto informal de un agricultor colombiano y devuelve un diccionario JSON " +
	"con las siguientes claves: date, activitycategory, type, description, quantity, unit, unit_price, total_value, currency, farm_id, source_message_id, created_at. " +
	"Usa 'null' para valores desconocidos o no mencionados. " +
	"Las categorías deben ser exactamente una de: compras de equipos y maquinaria, pre-siembra, siembra, fertilización, manejo del cultivo, cosecha, venta. " +
	"El tipo debe ser 'ingreso' o 'gasto'. El currency siempre 'COP'. " +
	"Si el mensaje dice 'hoy' o 'ayer' y no da una fecha exacta, pon date como null (lo llenaremos con la fecha actual). " +
	"Interpreta 'a [precio]' con cantidad dada como precio total (no unitario), a menos que se indique claramente lo contrario."

const extractSchema = `{
  "type": "object",
  "properties": {
    "date": {"type": ["string", "null"], "description": "Date of the transaction in YYYY-MM-DD format, or null if not given."},
    "activitycategory": {"type": "string", "description": "One of: compras de equipos y maquinaria, pre-siembra, siembra, fertilización, manejo del cultivo, cosecha, venta."},
    "type": {"type": "string", "description": "Transaction type: 'ingreso' (income) or 'gasto' (expense)."},
    "description": {"type": "string", "description": "Free-form description of the transaction."},
    "quantity": {"type": ["number", "null"], "description": "Quantity of items, or null if not mentioned."},
    "unit": {"type": ["string", "null"], "description": "Unit of the quantity (e.g. 'kilos', 'litros'), or null."},
    "unit_price": {"type": ["number", "null"], "description": "Price per unit if calculable, otherwise null."},
    "total_value": {"type": "number", "description": "Total monetary value of the transaction."},
    "currency": {"type": "string", "description": "Currency code, e.g. 'COP'."},
    "farm_id": {"type": "string", "description": "UUID of the farm."},
    "source_message_id": {"type": ["string", "null"], "description": "Source message ID if applicable, else null."},
    "created_at": {"type": ["string", "null"], "description": "Record creation timestamp, or null."}
  },
  "required": ["activitycategory", "type", "description", "total_value", "currency", "farm_id"]
}`
