package seed

// File is the top-level structure of the seed YAML file.
type File struct {
	Accounts map[string]AccountProps `yaml:"accounts"`
	SNOwners map[string]string       `yaml:"snOwners"`
	Apps     []AppProps              `yaml:"apps"`
}

// AccountProps describes one seeded backend account.
type AccountProps struct {
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
	MaxApps  *int   `yaml:"maxApps,omitempty"`
}

// AppProps describes one seeded catalog entry. AllowedSn distinguishes the
// absent key (nil) from an explicit empty list, mirroring the stored format.
type AppProps struct {
	ID          int64    `yaml:"id"`
	AppName     string   `yaml:"appName"`
	PackageName string   `yaml:"packageName"`
	DownloadURL string   `yaml:"downloadUrl"`
	IconURL     string   `yaml:"iconUrl,omitempty"`
	MD5         string   `yaml:"md5,omitempty"`
	Size        string   `yaml:"size,omitempty"`
	Desc        string   `yaml:"desc,omitempty"`
	Category    string   `yaml:"category,omitempty"`
	Publisher   string   `yaml:"publisher,omitempty"`
	Version     string   `yaml:"version,omitempty"`
	Owner       string   `yaml:"owner"`
	AllowedSn   []string `yaml:"allowedSn"`
}
