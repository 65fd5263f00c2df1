package verify

import (
	"fmt"

	"github.com/medassist-labs/medassist/internal/domain"
)

// Assistant copy shown alongside each workflow state. Tone follows the
// MedAssist system prompt: short sentences, repeat the critical facts.

func introMessage(med domain.Medication) string {
	return fmt.Sprintf("It is time for your %s. Can I help verify your bottle?", med.Name)
}

func cameraMessage(domain.Medication) string {
	return "Please hold your bottle up to the camera so I can see the label clearly."
}

func cameraFailedMessage(domain.Medication) string {
	return "I couldn't access the camera. That's okay, we can proceed manually."
}

func verifyingMessage(domain.Medication) string {
	return "Looking closely..."
}

func matchMessage(med domain.Medication, result domain.VerificationResult) string {
	return fmt.Sprintf("I see a %s. That looks correct! Did you take your %s %ss now?", result.Label, med.Dose, med.Form)
}

func mismatchMessage(_ domain.Medication, result domain.VerificationResult) string {
	return fmt.Sprintf("I'm not completely sure about this bottle. It looks like %s. Please double check the label before taking it.", result.Label)
}

func manualMessage(med domain.Medication) string {
	return fmt.Sprintf("No problem. Did you take your %s %ss?", med.Name, med.Form)
}
