// Package prompt renders the fixed instruction text sent to the model for
// each flow. Rendering is pure interpolation: inputs are assumed to have
// passed schema validation already.
package prompt

import (
	"fmt"
	"strconv"

	"github.com/sonicalchemist/api/internal/model"
)

const soundtrackTemplate = `You are an AI sound design conceptualizer. Your task is to describe a concept for a 1-3 minute royalty-free background soundtrack based on the user-selected genre and mood. Provide a detailed description of what this soundtrack would sound like and include specific metadata such as BPM, key, primary instruments, and mood tags. As a text-based AI, you cannot generate actual audio files. Your response should focus on providing a rich textual description and precise metadata.

Genre: %s
Mood: %s
Length: %d minutes`

const metadataSummaryTemplate = `Summarize the following metadata of a generated soundtrack in a concise and informative way:

BPM: %s
Key: %s
Instruments: %s
Mood: %s`

// Soundtrack renders the soundtrack concept prompt.
func Soundtrack(req model.SoundtrackRequest) string {
	return fmt.Sprintf(soundtrackTemplate, req.Genre, req.Mood, req.Length())
}

// MetadataSummary renders the metadata summary prompt.
func MetadataSummary(req model.MetadataSummaryRequest) string {
	bpm := ""
	if req.BPM != nil {
		bpm = strconv.FormatFloat(*req.BPM, 'f', -1, 64)
	}
	return fmt.Sprintf(metadataSummaryTemplate, bpm, req.Key, req.Instruments, req.Mood)
}
