package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"streetgrab/pkg/auth"
	"streetgrab/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored API keys",
	Long: `Manage stored Street View API keys securely.

Keys are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

Never share your keys or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [profile]",
	Short: "Store an API key securely",
	Long: `Store a Street View Static API key in the system keychain or an
encrypted file.

You will be prompted for:
  - API key (required, hidden as you type)
  - Embed key for the browser backend (optional, press Enter to reuse
    the API key)

Keys come from the Google Cloud console with the Street View Static API
and the Maps Embed API enabled.`,
	Example: `  # Store the default profile
  streetgrab auth login

  # Store a named profile
  streetgrab auth login work`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [profile]",
	Short: "Remove a stored API key",
	Long: `Remove a stored API key. Without a profile name the default
profile is removed.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status [profile]",
	Short: "Show whether a stored API key is available",
	Args:  cobra.MaximumNArgs(1),
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	name := auth.DefaultProfile
	if len(args) > 0 {
		name = strings.TrimSpace(args[0])
	}

	reader := bufio.NewReader(os.Stdin)

	// Check if the profile already exists
	if existing, _ := manager.Retrieve(name); existing != nil {
		fmt.Printf("Profile '%s' already exists. Update the key? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Println("Enter your key values (they will be hidden as you type):")
	fmt.Println()

	var apiKey string
	for {
		fmt.Print("API key: ")
		apiKey, err = readPassword()
		if err != nil {
			ui.PrintError("Failed to read API key", err.Error())
			os.Exit(1)
		}

		// Google API keys start with AIza and are 39 characters long
		if len(apiKey) < 20 {
			fmt.Println("\nThat doesn't look like a valid API key.")
			fmt.Println("Keys from the Cloud console look like: AIzaSy...")
			fmt.Print("\nTry again? (Y/n): ")
			retry, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(retry)) == "n" {
				os.Exit(1)
			}
			continue
		}
		break
	}

	fmt.Print("\nEmbed key (press Enter to reuse the API key): ")
	embedKey, err := readPassword()
	if err != nil {
		ui.PrintError("Failed to read embed key", err.Error())
		os.Exit(1)
	}
	if embedKey == "" {
		embedKey = apiKey
	}

	creds := &auth.Credentials{
		Name:         name,
		APIKey:       apiKey,
		EmbedKey:     embedKey,
		LastModified: time.Now(),
	}

	if err := manager.Store(creds); err != nil {
		ui.PrintError("Failed to store credentials", err.Error())
		os.Exit(1)
	}

	fmt.Println()
	ui.PrintSuccess(fmt.Sprintf("Stored API key for profile '%s'", name))
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	name := auth.DefaultProfile
	if len(args) > 0 {
		name = strings.TrimSpace(args[0])
	}

	if err := manager.Delete(name); err != nil {
		ui.PrintError("Failed to remove credentials", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Removed API key for profile '%s'", name))
}

func runStatus(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	name := auth.DefaultProfile
	if len(args) > 0 {
		name = strings.TrimSpace(args[0])
	}

	creds, err := manager.Retrieve(name)
	if err != nil {
		ui.PrintWarning("No stored API key", name)
		fmt.Println("\nRun 'streetgrab auth login' to store one.")
		os.Exit(1)
	}

	ui.PrintInfo("Profile", creds.Name)
	ui.PrintInfo("API key", maskKey(creds.APIKey))
	if creds.EmbedKey != "" {
		ui.PrintInfo("Embed key", maskKey(creds.EmbedKey))
	}
	if !creds.LastModified.IsZero() {
		ui.PrintInfo("Last modified", creds.LastModified.Format(time.RFC1123))
	}
}

// maskKey shows just enough of a key to identify it
func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// readPassword reads a password from stdin without echoing
func readPassword() (string, error) {
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}
