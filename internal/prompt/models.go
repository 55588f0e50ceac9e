package prompt

type BioPromptData struct {
	Name      string
	Workplace string
	Tone      string
	MaxWords  int
}
