package stages

import (
	"fmt"
	"math/rand"
	"strings"

	"inmochat_backend/internal/chat/domain"
)

// User-facing copy lives here so handlers stay readable. Everything is
// Spanish; the assistant serves a Spanish-speaking market.

func confirmationMenu(name string, count int) string {
	return fmt.Sprintf("¡Hola %s! Encontré %d propiedades que podrían interesarte. ¿Qué te gustaría hacer?\n\n"+
		"A. 🏠 Mostrar las propiedades encontradas\n"+
		"B. 🔍 Hacer una nueva búsqueda\n\n"+
		"Por favor, responde con \"A\" o \"B\" para indicarme qué deseas hacer.", name, count)
}

func confirmationReminder(name string, count int) string {
	return fmt.Sprintf("Hola %s, encontré %d propiedades que podrían interesarte. Para continuar, por favor elige una opción:\n\n"+
		"🏠 **A** - Ver las propiedades encontradas\n"+
		"🔍 **B** - Hacer una nueva búsqueda\n"+
		"❌ **Cancelar** - Salir de la búsqueda\n\n"+
		"Puedes responder simplemente con \"A\", \"B\" o \"Cancelar\".", name, count)
}

var displayIntros = []string{
	"¡Excelente %s! He encontrado %d propiedades que se ajustan a lo que buscas:",
	"Perfecto %s, aquí tienes %d opciones que podrían interesarte:",
	"¡Genial %s! Encontré %d propiedades que coinciden con tus preferencias:",
}

var propertyEmojis = []string{"🏠", "🏡", "🏢", "🏘️", "🏬"}

func propertiesDisplay(props []domain.Property, name string) string {
	intro := fmt.Sprintf(displayIntros[rand.Intn(len(displayIntros))], name, len(props))

	var b strings.Builder
	b.WriteString(intro)
	b.WriteString("\n\n")
	for i, p := range props {
		emoji := propertyEmojis[i%len(propertyEmojis)]
		fmt.Fprintf(&b, "%s **Opción %d** (Ref: %s)\nCoincidencia: %.0f%%\n\n%s\n\n", emoji, i+1, p.ID, p.Score*100, p.Text)
		b.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	}

	fmt.Fprintf(&b, "\n¿Qué te gustaría hacer ahora %s?\n\n"+
		"🔍 **A** - Buscar más propiedades con otros criterios\n"+
		"💬 **B** - Contarme más detalles sobre alguna propiedad\n"+
		"🔄 **C** - Refinar mi búsqueda actual\n"+
		"❌ **Salir** - Terminar la búsqueda\n\n"+
		"Puedes responder con la letra de tu opción o escribir lo que necesites.", name)
	return b.String()
}

func noResults(name string) string {
	return fmt.Sprintf("Lo siento %s, no encontré propiedades que coincidan con tus criterios. ¿Te gustaría hacer una nueva búsqueda?", name)
}

func newSearchPrompt(name string) string {
	return fmt.Sprintf("Perfecto %s, vamos a comenzar una nueva búsqueda. ¿En qué ciudad o distrito te gustaría buscar una propiedad?", name)
}

func cancelSearch(name string) string {
	return fmt.Sprintf("Entendido %s. ¿En qué más puedo ayudarte? Puedo ayudarte a buscar propiedades o responder preguntas sobre el mercado inmobiliario.", name)
}

func farewell(name string) string {
	return fmt.Sprintf("Entendido %s. Ha sido un placer ayudarte en tu búsqueda. Si necesitas algo más, estaré aquí para asistirte.", name)
}

func displayMenu(name string) string {
	return fmt.Sprintf("No estoy seguro de entender %s. ¿Podrías elegir una de las opciones?\n\n"+
		"🔍 **A** - Nueva búsqueda\n"+
		"💬 **B** - Más detalles\n"+
		"🔄 **C** - Refinar búsqueda\n"+
		"❌ **Salir** - Terminar", name)
}

func detailsPrompt(name string) string {
	return fmt.Sprintf("¡Claro %s! ¿Sobre cuál propiedad te gustaría saber más? Puedes decirme el número de la opción (1, 2, 3...) o la referencia.", name)
}

func refinePrompt(name string) string {
	return fmt.Sprintf("Excelente %s, vamos a refinar tu búsqueda. ¿Qué criterio te gustaría ajustar? Por ejemplo: presupuesto, número de habitaciones, ubicación específica, etc.", name)
}

func detailsFollowUp(name string) string {
	return fmt.Sprintf("\n\n¿Te gustaría %s?\n"+
		"📞 **A** - Programar una visita\n"+
		"🔍 **B** - Ver propiedades similares\n"+
		"📋 **C** - Volver a la lista completa\n"+
		"🆕 **D** - Hacer una nueva búsqueda\n\n"+
		"Responde con la letra de tu opción.", name)
}

func detailsFallback(p domain.Property) string {
	return fmt.Sprintf("Aquí tienes los detalles de la propiedad %s:\n\n%s\n\n¿Te gustaría programar una visita o necesitas más información específica?", p.ID, p.Text)
}

func unknownProperty(name string, props []domain.Property) string {
	var refs []string
	for i, p := range props {
		refs = append(refs, fmt.Sprintf("%d. Ref: %s", i+1, p.ID))
	}
	return fmt.Sprintf("Lo siento %s, no pude identificar qué propiedad te interesa. Aquí están las opciones disponibles:\n\n%s\n\n"+
		"Por favor, dime el número de la propiedad sobre la que quieres más información.", name, strings.Join(refs, "\n"))
}

// Spanish labels for the refine menu and the update confirmations.
var refineLabels = map[string]string{
	domain.FieldBudget:       "presupuesto",
	domain.FieldLocation:     "ubicación",
	domain.FieldPropertyType: "tipo de propiedad",
	domain.FieldBedrooms:     "dormitorios",
	domain.FieldBathrooms:    "baños",
	domain.FieldMinArea:      "metraje",
	domain.FieldAmenities:    "amenidades",
	domain.FieldTransaction:  "transacción",
}

var refineQuestions = map[string]string{
	domain.FieldBudget:       "Entiendo %s, hablemos del presupuesto. %s. ¿Cuál sería tu rango de presupuesto ideal?",
	domain.FieldLocation:     "Perfecto %s, refinemos la ubicación. %s. ¿En qué distrito o zona específica te gustaría buscar?",
	domain.FieldBedrooms:     "Claro %s, hablemos de las habitaciones. %s. ¿Cuántos dormitorios necesitas mínimo?",
	domain.FieldBathrooms:    "Entendido %s, sobre los baños. %s. ¿Cuántos baños te gustaría que tenga la propiedad?",
	domain.FieldMinArea:      "Perfecto %s, hablemos del tamaño. %s. ¿Cuál sería el área mínima que necesitas?",
	domain.FieldPropertyType: "Excelente %s, sobre el tipo de propiedad. %s. ¿Qué tipo de propiedad prefieres: casa, departamento, oficina, terreno?",
	domain.FieldAmenities:    "Genial %s, hablemos de las amenidades. %s. ¿Qué servicios o amenidades son importantes para ti? (gimnasio, piscina, seguridad, etc.)",
	domain.FieldTransaction:  "Entiendo %s, sobre el tipo de transacción. %s. ¿Estás buscando para comprar o alquilar?",
}

func refineQuestion(field, name string, lead domain.Lead) string {
	current := lead.FieldSummary(field)
	status := "Actualmente no tienes este criterio definido"
	if current != "" {
		status = "Actualmente buscas: " + current
	}

	tmpl, ok := refineQuestions[field]
	if !ok {
		return fmt.Sprintf("¿Qué aspecto específico de %s te gustaría ajustar?", refineLabels[field])
	}
	return fmt.Sprintf(tmpl, name, status) + "\n\nPuedes ser específico con tus preferencias para encontrar exactamente lo que buscas."
}

func refineMenu(name string, lead domain.Lead) string {
	var current []string
	labels := []struct{ field, label string }{
		{domain.FieldLocation, "Ubicación"},
		{domain.FieldPropertyType, "Tipo de propiedad"},
		{domain.FieldTransaction, "Tipo de transacción"},
		{domain.FieldBudget, "Presupuesto"},
		{domain.FieldBedrooms, "Dormitorios"},
		{domain.FieldBathrooms, "Baños"},
		{domain.FieldMinArea, "Metraje mínimo"},
	}
	for _, l := range labels {
		if v := lead.FieldSummary(l.field); v != "" {
			current = append(current, fmt.Sprintf("• %s: %s", l.label, v))
		}
	}
	criteria := "• No hay criterios específicos definidos"
	if len(current) > 0 {
		criteria = strings.Join(current, "\n")
	}

	return fmt.Sprintf("Perfecto %s, vamos a refinar tu búsqueda.\n\n**Criterios actuales:**\n%s\n\n"+
		"**¿Qué te gustaría ajustar?**\n\n"+
		"💰 **A** - Presupuesto\n"+
		"📍 **B** - Ubicación\n"+
		"🏠 **C** - Tipo de propiedad\n"+
		"🛏️ **D** - Número de habitaciones\n"+
		"🚿 **E** - Número de baños\n"+
		"📐 **F** - Tamaño/metraje\n"+
		"🎯 **G** - Amenidades específicas\n\n"+
		"Responde con la letra de tu opción o dime directamente qué quieres cambiar.", name, criteria)
}

func updateConfirmation(name, field, value string) string {
	return fmt.Sprintf("Perfecto %s, he actualizado tu criterio de %s a: %s. ¿Te gustaría que busque propiedades con estos nuevos criterios?\n\n"+
		"✅ **Sí** - Buscar con criterios actualizados\n"+
		"🔄 **Refinar más** - Ajustar otros criterios\n"+
		"❌ **Cancelar** - Volver al menú principal", name, refineLabels[field], value)
}

func updateFailed(name, field string) string {
	return fmt.Sprintf("Lo siento %s, no pude procesar esa actualización. ¿Podrías ser más específico sobre el %s que buscas?", name, refineLabels[field])
}

func updatedSearchMenu(name string) string {
	return fmt.Sprintf("¡Excelente %s! He encontrado propiedades con tus nuevos criterios. ¿Qué te gustaría hacer?\n\n"+
		"A. 🏠 Ver las propiedades encontradas\n"+
		"B. 🔍 Hacer otra búsqueda\n\n"+
		"Responde con \"A\" o \"B\".", name)
}

func fallbackQuestion(name string, missing []string) string {
	var labels []string
	for _, f := range missing {
		if l, ok := refineLabels[f]; ok {
			labels = append(labels, l)
		}
	}
	if len(labels) == 0 {
		return fmt.Sprintf("Cuéntame %s, ¿qué características debe tener tu propiedad ideal?", name)
	}
	return fmt.Sprintf("Para ayudarte mejor %s, ¿me puedes contar sobre: %s?", name, strings.Join(labels, ", "))
}
