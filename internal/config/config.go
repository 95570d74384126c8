package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/sitegen/sitegen/internal/reformat"
)

// Site holds the values exposed to layouts as site.*
type Site struct {
	Title   string `mapstructure:"title"`
	URL     string `mapstructure:"url"`
	BaseURL string `mapstructure:"baseurl"`
	Author  string `mapstructure:"author"`
}

// Collection locates one collection of documents
type Collection struct {
	Dir    string `mapstructure:"dir"`
	Layout string `mapstructure:"layout"`
}

// Config holds the application configuration
type Config struct {
	SitePath       string     `mapstructure:"path"`
	OutputDir      string     `mapstructure:"output_dir"`
	Site           Site       `mapstructure:"site"`
	Articles       Collection `mapstructure:"articles"`
	Projects       Collection `mapstructure:"projects"`
	Exclude        []string   `mapstructure:"exclude"`
	Engine         string     `mapstructure:"engine"`
	Style          string     `mapstructure:"style"`
	ParagraphClass string     `mapstructure:"paragraph_class"`
	PreserveBlocks bool       `mapstructure:"preserve_blocks"`
	ReadingTime    string     `mapstructure:"reading_time"`
	Drafts         bool       `mapstructure:"drafts"`
	Workers        int        `mapstructure:"workers"`
	PreHook        string     `mapstructure:"pre_hook"`
	PostHook       string     `mapstructure:"post_hook"`
	Editor         string     `mapstructure:"editor"`
	ColorTitle     string     `mapstructure:"color_title"`
	ColorPath      string     `mapstructure:"color_path"`
	ColorDate      string     `mapstructure:"color_date"`
	ColorBorder    string     `mapstructure:"color_border"`
	ColorCursor    string     `mapstructure:"color_cursor"`
	ColorSelected  string     `mapstructure:"color_selected"`
	ColorDim       string     `mapstructure:"color_dim"`
}

// C is the global config instance
var C Config

// Init initializes configuration with viper
func Init() error {
	viper.SetDefault("path", ".")
	viper.SetDefault("output_dir", "") // next to the sources
	viper.SetDefault("site.title", "My Site")
	viper.SetDefault("site.url", "")
	viper.SetDefault("site.baseurl", "..") // pages live one directory below the root
	viper.SetDefault("site.author", "")
	viper.SetDefault("articles.dir", "_articles")
	viper.SetDefault("articles.layout", "_layouts/article.html")
	viper.SetDefault("projects.dir", "_projects")
	viper.SetDefault("projects.layout", "_layouts/project.html")
	viper.SetDefault("exclude", []string{"*TEMPLATE*"})
	viper.SetDefault("engine", "classic")
	viper.SetDefault("style", "styled")
	viper.SetDefault("paragraph_class", reformat.DefaultParagraphClass)
	viper.SetDefault("preserve_blocks", false)
	viper.SetDefault("reading_time", "") // estimated from the word count
	viper.SetDefault("drafts", false)
	viper.SetDefault("workers", 0) // derived from GOMAXPROCS
	viper.SetDefault("pre_hook", "")
	viper.SetDefault("post_hook", "")
	viper.SetDefault("editor", os.Getenv("EDITOR"))
	viper.SetDefault("color_title", "36")     // Cyan
	viper.SetDefault("color_path", "90")      // Gray
	viper.SetDefault("color_date", "33")      // Yellow
	viper.SetDefault("color_border", "240")   // 256-color gray
	viper.SetDefault("color_cursor", "212")   // Pink
	viper.SetDefault("color_selected", "236") // Dark background
	viper.SetDefault("color_dim", "241")

	viper.SetConfigName("sitegen")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "sitegen"))
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("SITEGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Try to read config, but don't fail if not found or malformed
	_ = viper.ReadInConfig()

	return viper.Unmarshal(&C)
}

// ConfigFile returns the config file in use, if any
func ConfigFile() string {
	return viper.ConfigFileUsed()
}

// GetPath returns the site root with tilde expansion
func GetPath() string {
	return expandTilde(viper.GetString("path"))
}

// GetOutputDir returns the output root with tilde expansion. Empty means
// pages are written next to their sources.
func GetOutputDir() string {
	return expandTilde(viper.GetString("output_dir"))
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetSite returns the site.* values
func GetSite() Site {
	return Site{
		Title:   viper.GetString("site.title"),
		URL:     viper.GetString("site.url"),
		BaseURL: viper.GetString("site.baseurl"),
		Author:  viper.GetString("site.author"),
	}
}

// GetCollection returns the directory and layout of a collection
func GetCollection(name string) Collection {
	return Collection{
		Dir:    viper.GetString(name + ".dir"),
		Layout: viper.GetString(name + ".layout"),
	}
}

// GetExclude returns the glob patterns of skipped files
func GetExclude() []string {
	return viper.GetStringSlice("exclude")
}

// GetEngine returns the markdown engine name
func GetEngine() string {
	return viper.GetString("engine")
}

// GetStyle returns the inline style set
func GetStyle() string {
	return viper.GetString("style")
}

// GetParagraphClass returns the class put on generated paragraphs
func GetParagraphClass() string {
	return viper.GetString("paragraph_class")
}

// GetPreserveBlocks returns whether code and list bodies stay inside their block
func GetPreserveBlocks() bool {
	return viper.GetBool("preserve_blocks")
}

// GetReadingTime returns the fixed reading time label, if any
func GetReadingTime() string {
	return viper.GetString("reading_time")
}

// GetDrafts returns whether draft documents are built
func GetDrafts() bool {
	return viper.GetBool("drafts")
}

// GetWorkers returns the configured worker count
func GetWorkers() int {
	return viper.GetInt("workers")
}

// GetPreHook returns the pre-build hook script
func GetPreHook() string {
	return viper.GetString("pre_hook")
}

// GetPostHook returns the post-build hook script
func GetPostHook() string {
	return viper.GetString("post_hook")
}

// GetEditor returns the editor used to open sources
func GetEditor() string {
	return viper.GetString("editor")
}

// GetColorTitle returns the ANSI color code for titles
func GetColorTitle() string {
	return viper.GetString("color_title")
}

// GetColorPath returns the ANSI color code for paths
func GetColorPath() string {
	return viper.GetString("color_path")
}

// GetColorDate returns the ANSI color code for dates
func GetColorDate() string {
	return viper.GetString("color_date")
}

// GetColorBorder returns the 256-color code for borders
func GetColorBorder() string {
	return viper.GetString("color_border")
}

// GetColorCursor returns the 256-color code for the cursor
func GetColorCursor() string {
	return viper.GetString("color_cursor")
}

// GetColorSelected returns the 256-color code for the selected row background
func GetColorSelected() string {
	return viper.GetString("color_selected")
}

// GetColorDim returns the 256-color code for secondary text
func GetColorDim() string {
	return viper.GetString("color_dim")
}

// SetPath sets path at runtime
func SetPath(path string) {
	viper.Set("path", path)
	C.SitePath = path
}

// SetOutputDir sets the output root at runtime
func SetOutputDir(dir string) {
	viper.Set("output_dir", dir)
	C.OutputDir = dir
}
