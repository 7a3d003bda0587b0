package storages

type Conf struct {
	Type         string `json:"type"`
	TemplatesDir string `json:"templates_dir"`
	FontsDir     string `json:"fonts_dir"`
	OutputDir    string `json:"output_dir"`
}
