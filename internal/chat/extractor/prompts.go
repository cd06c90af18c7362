package extractor

// Prompts are in Spanish because the assistant serves a Spanish-speaking
// market; extraction quality drops noticeably when the instructions and
// the conversation are in different languages.

const leadPrompt = `Analiza toda la conversación del usuario y extrae TODOS los datos inmobiliarios mencionados.

REGLAS DE EXTRACCIÓN ESTRICTAS:
1. property_types: SIEMPRE como lista ["departamento"], ["casa"], ["oficina"], etc.
   - Si menciona "departamento" devuelve ["departamento"]
   - Si menciona "casa" devuelve ["casa"]
   - Si no especifica tipo pero menciona dormitorios o baños devuelve ["departamento"]
2. location: ciudad, distrito o zona mencionada
3. transaction: "alquiler" o "compra"
4. budget: número en soles o dólares, sin símbolos
5. bedrooms: cantidad de dormitorios
6. bathrooms: cantidad de baños
7. min_area: metraje mínimo en metros cuadrados
8. amenities: lista de comodidades pedidas (piscina, gimnasio, ascensor, etc.)
9. proximity: lugares cerca de los que quiere vivir (parques, colegios, metro)
10. pet_friendly: true solo si menciona mascotas

INFERENCIAS OBLIGATORIAS:
- Si budget < 3000 soles entonces transaction: "alquiler"
- Si budget > 50000 soles entonces transaction: "compra"
- Si menciona dormitorios o baños pero no tipo entonces property_types: ["departamento"]

EJEMPLOS EXACTOS:
- "departamento en Lima" produce property_types: ["departamento"], location: "Lima"
- "busco en Lima" y "3 dormitorios" produce location: "Lima", bedrooms: 3, property_types: ["departamento"]
- "1000 soles" produce budget: 1000, transaction: "alquiler"

Omite todo campo que el usuario no haya mencionado ni se pueda inferir.

Conversación completa del usuario:
%s`

const fieldPrompt = `El usuario está actualizando UN solo criterio de su búsqueda inmobiliaria: %s.
Extrae únicamente el nuevo valor de ese criterio del siguiente mensaje y omite todos los demás campos.

Mensaje del usuario:
%s`

const questionPrompt = `Eres un asesor inmobiliario amigable y conversacional. Tu objetivo es ayudar al cliente a encontrar su propiedad ideal haciendo preguntas naturales y específicas. Sé cordial, empático y profesional. Máximo 60 palabras.
IMPORTANTE: Solo haz preguntas, NO recomiendes propiedades aún.
Datos que necesitas obtener: %s
Haz UNA pregunta específica sobre el dato más importante que falta.

Conversación hasta ahora:
%s`

const domainPrompt = `Eres un filtro para un asistente inmobiliario. Determina si el siguiente mensaje de un usuario es relevante para una conversación sobre búsqueda, compra o alquiler de propiedades. Saludos y respuestas breves dentro de una conversación inmobiliaria cuentan como relevantes.

Mensaje: %s`
