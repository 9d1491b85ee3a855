package services

import (
	"fmt"
	"strings"

	"github.com/neuvia/backend/internal/domain/entities"
)

// ChatGreeting opens every chat session
const ChatGreeting = "Hello! I'm your pregnancy wellness assistant. I can help you with common pregnancy symptoms " +
	"and provide gentle home remedies. Please describe any symptoms you're experiencing, and I'll do my best to help!"

// ComposeReply renders the assistant text for a triage result
func ComposeReply(result entities.TriageResult) string {
	var b strings.Builder

	switch result.Kind {
	case entities.ClassificationAlert:
		names := make([]string, len(result.Severe))
		for i, s := range result.Severe {
			names[i] = s.DisplayName
		}
		b.WriteString("IMPORTANT MEDICAL ALERT\n\n")
		fmt.Fprintf(&b, "Based on your symptoms, you may be experiencing signs of: %s\n\n", strings.Join(names, ", "))
		b.WriteString("Please consult your doctor immediately or log your symptoms for a detailed analysis.\n\n")
		b.WriteString("Your health and your baby's health are the top priority. Don't hesitate to seek professional medical care.")

	case entities.ClassificationRemedy:
		symptoms := make([]string, len(result.Remedies))
		for i, r := range result.Remedies {
			symptoms[i] = r.Symptom
		}
		fmt.Fprintf(&b, "I understand you're experiencing %s. Here are some safe home remedies that may help:\n\n",
			strings.Join(symptoms, " and "))
		for _, r := range result.Remedies {
			fmt.Fprintf(&b, "For %s:\n", r.Symptom)
			for i, item := range r.Remedies {
				fmt.Fprintf(&b, "%d. %s\n", i+1, item)
			}
			if r.Tips != "" {
				fmt.Fprintf(&b, "\nTip: %s\n", r.Tips)
			}
			b.WriteString("\n")
		}
		b.WriteString("Important: these are general suggestions. Always consult your healthcare provider before trying " +
			"new remedies, especially if symptoms persist or worsen.")

	default:
		b.WriteString("I want to help you with your pregnancy concerns. Could you describe your symptoms more specifically? " +
			"I can provide guidance for common pregnancy symptoms like:\n\n")
		for _, c := range result.Categories {
			fmt.Fprintf(&b, "- %s\n", c)
		}
		b.WriteString("\nIf you're experiencing any severe or concerning symptoms, it's always best to consult your healthcare provider.")
	}

	return b.String()
}
