package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wilbur182/flowfiler/internal/config"
	"github.com/wilbur182/flowfiler/internal/favorites"
	"github.com/wilbur182/flowfiler/internal/projection"
	"github.com/wilbur182/flowfiler/internal/styles"
	"github.com/wilbur182/flowfiler/internal/version"
	"github.com/wilbur182/flowfiler/internal/workspace"
)

var (
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("flowfiler version %s\n", version.Effective(version.Version))
		},
	}

	sessionJSON bool

	sessionCmd = &cobra.Command{
		Use:   "session",
		Short: "Inspect or reset the saved workspace",
	}

	sessionShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the saved tabs, lanes and panes",
		RunE:  runSessionShow,
	}

	sessionResetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Delete the saved session",
		RunE:  runSessionReset,
	}

	favoritesCmd = &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage favorite folders",
	}

	favoritesListCmd = &cobra.Command{
		Use:   "list",
		Short: "List favorites with their hotkeys",
		RunE:  runFavoritesList,
	}

	favoritesAddCmd = &cobra.Command{
		Use:   "add <dir>...",
		Short: "Add folders to the favorites",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runFavoritesAdd,
	}

	favoritesRemoveCmd = &cobra.Command{
		Use:   "remove <index|dir>",
		Short: "Remove a favorite by position (1-based) or path",
		Args:  cobra.ExactArgs(1),
		RunE:  runFavoritesRemove,
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Show or write the configuration",
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(configFile())
		},
	}

	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		RunE:  runConfigInit,
	}

	configThemeCmd = &cobra.Command{
		Use:   "theme [name]",
		Short: "List themes or set the active one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigTheme,
	}
)

func init() {
	sessionShowCmd.Flags().BoolVar(&sessionJSON, "json", false, "print the raw session record")
	sessionCmd.AddCommand(sessionShowCmd, sessionResetCmd)
	favoritesCmd.AddCommand(favoritesListCmd, favoritesAddCmd, favoritesRemoveCmd)
	configCmd.AddCommand(configPathCmd, configInitCmd, configThemeCmd)
}

func configFile() string {
	if configPath != "" {
		return config.ExpandPath(configPath)
	}
	return config.ConfigPath()
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	s, err := workspace.LoadSession(cfg.Session.Path)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Println("No saved session")
		return nil
	}
	if err != nil {
		return err
	}

	if sessionJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Printf("Session: %s\n", cfg.Session.Path)
	if g, err := workspace.DecodeGeometry(s.Geometry); err == nil {
		fmt.Printf("Window: %dx%d\n", g.Width, g.Height)
	}
	for i, t := range s.Tabs {
		active := ""
		if i == s.ActiveTabIndex {
			active = " (active)"
		}
		fmt.Printf("\n%d. %s%s\n", i+1, t.Title, active)
		for li, lane := range t.State.Lanes {
			fmt.Printf("   Lane %d\n", li+1)
			for pi, p := range lane.Panes {
				mode := projection.DisplayMode(p.DisplayMode)
				sort := projection.Sort{Column: projection.SortColumn(p.SortCol), Order: projection.SortOrder(p.SortOrder)}
				fmt.Printf("     FLOW %d [%s | %s %s]", pi+1, mode, sort.Column, sort.Order)
				if len(p.Paths) == 0 {
					fmt.Println(" (empty)")
					continue
				}
				fmt.Printf(" %s\n", strings.Join(p.Paths, " + "))
			}
		}
	}
	return nil
}

func runSessionReset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := os.Remove(cfg.Session.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	fmt.Println("Session reset")
	return nil
}

func openFavorites() (*favorites.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return favorites.Open(cfg.Favorites.Path, nil), nil
}

func runFavoritesList(cmd *cobra.Command, args []string) error {
	store, err := openFavorites()
	if err != nil {
		return err
	}
	if store.Len() == 0 {
		fmt.Println("No favorites")
		return nil
	}
	for i, p := range store.Items() {
		fmt.Printf("%2d. %s  %s\n", i+1, favorites.Label(i, p), p)
	}
	return nil
}

func runFavoritesAdd(cmd *cobra.Command, args []string) error {
	store, err := openFavorites()
	if err != nil {
		return err
	}
	for _, arg := range args {
		dir := config.ExpandPath(arg)
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			return fmt.Errorf("not a folder: %s", arg)
		}
		if err := store.Add(dir); err != nil {
			return err
		}
	}
	fmt.Printf("%d favorites\n", store.Len())
	return nil
}

func runFavoritesRemove(cmd *cobra.Command, args []string) error {
	store, err := openFavorites()
	if err != nil {
		return err
	}
	idx := -1
	if n, err := strconv.Atoi(args[0]); err == nil {
		idx = n - 1
	} else {
		want := config.ExpandPath(args[0])
		for i, p := range store.Items() {
			if p == want {
				idx = i
			}
		}
	}
	if _, ok := store.At(idx); !ok {
		return fmt.Errorf("no favorite %q", args[0])
	}
	return store.Remove(idx)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.SaveTo(path, cfg); err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func runConfigTheme(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		current := ""
		if cfg, err := loadConfig(); err == nil {
			current = cfg.UI.Theme.Name
		}
		for _, name := range styles.ListThemes() {
			mark := "  "
			if name == current {
				mark = "* "
			}
			fmt.Println(mark + name)
		}
		return nil
	}
	if err := config.SaveTheme(configFile(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Theme set to %s\n", args[0])
	return nil
}
