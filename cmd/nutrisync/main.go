package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/arodin/nutrisync/internal/api"
	"github.com/arodin/nutrisync/internal/config"
	"github.com/arodin/nutrisync/internal/executor"
	"github.com/arodin/nutrisync/internal/logger"
	"github.com/arodin/nutrisync/internal/models"
	"github.com/arodin/nutrisync/internal/scanner"
	"github.com/arodin/nutrisync/internal/services"
	"github.com/arodin/nutrisync/internal/store"
	"github.com/arodin/nutrisync/internal/tui"
	"github.com/arodin/nutrisync/internal/utils"
)

const dateLayout = "2006-01-02"

type app struct {
	cfg      *config.Config
	tokens   *store.TokenStore
	settings *store.SettingsStore
	auth     *services.AuthService
	calories *services.CaloriesService
	macros   *services.MacrosService
	meals    *services.MealsService
	profile  *services.ProfileService
}

// newApp wires the client stack. Base URL precedence: flag > environment >
// persisted settings > compiled-in default.
func newApp(baseURLFlag string) (*app, error) {
	settings, err := store.OpenSettingsStore()
	if err != nil {
		return nil, err
	}

	cfg := config.NewConfig()
	if saved := settings.BaseURL(); saved != "" {
		cfg.BaseURL = saved
	}
	cfg.LoadFromEnvironment()
	if baseURLFlag != "" {
		cfg.BaseURL = baseURLFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	tokens, err := store.OpenTokenStore()
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg, tokens)
	exec := executor.New(cfg)
	profile := services.NewProfileService(client, exec)

	return &app{
		cfg:      cfg,
		tokens:   tokens,
		settings: settings,
		auth:     services.NewAuthService(client, exec, tokens, profile),
		calories: services.NewCaloriesService(client, exec),
		macros:   services.NewMacrosService(client, exec),
		meals:    services.NewMealsService(client, exec),
		profile:  profile,
	}, nil
}

// withStatus runs fn behind a spinner when stdout is a terminal, unless
// plain output was requested.
func withStatus(plain bool, label string, fn func() error) error {
	if plain || !stdoutIsTerminal() {
		return fn()
	}
	// Route logs to a file while the spinner owns the terminal.
	if err := logger.InitFileOnly(); err == nil {
		defer logger.Close()
		defer logger.Init()
	}
	return tui.Run(label, fn)
}

func stdoutIsTerminal() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func outcomeErr[T any](result executor.Outcome[T]) error {
	if result.IsError() {
		return errors.New(result.Err().Message)
	}
	return nil
}

// parseRange resolves --from/--to (whole local days) with --days as the
// fallback, counting back from today.
func parseRange(fromFlag, toFlag string, days int) (time.Time, time.Time, error) {
	if fromFlag != "" || toFlag != "" {
		if fromFlag == "" || toFlag == "" {
			return time.Time{}, time.Time{}, errors.New("--from and --to must be used together")
		}
		fromDay, err := time.ParseInLocation(dateLayout, fromFlag, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date: %w", err)
		}
		toDay, err := time.ParseInLocation(dateLayout, toFlag, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date: %w", err)
		}
		if toDay.Before(fromDay) {
			return time.Time{}, time.Time{}, errors.New("--to must not precede --from")
		}
		_, toEnd := utils.DayBounds(toDay)
		return fromDay, toEnd, nil
	}

	if days < 1 {
		days = 1
	}
	start, end := utils.DayBounds(time.Now())
	return start.AddDate(0, 0, -(days - 1)), end, nil
}

func main() {
	logger.Init()
	utils.LoadEnvironment()

	var (
		baseURL  string
		plain    bool
		fromFlag string
		toFlag   string
		days     int
	)

	application := &app{}

	rootCmd := &cobra.Command{
		Use:   "nutrisync",
		Short: "A CLI client for the nutrition tracking service",
		Long:  `nutrisync talks to the nutrition backend: authentication, meal history, calorie and macro stats, and product lookups.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			built, err := newApp(baseURL)
			if err != nil {
				return err
			}
			*application = *built
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Server base URL (overrides settings and environment)")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "Disable the spinner status display")

	loginCmd := &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Authenticate and store the token pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := application.auth.Login(cmd.Context(), args[0], args[1])
			if err := outcomeErr(result); err != nil {
				return err
			}
			fmt.Println("Logged in.")
			return nil
		},
	}

	registerCmd := &cobra.Command{
		Use:   "register <username> <password>",
		Short: "Create an account and store the token pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := application.auth.Register(cmd.Context(), args[0], args[1])
			if err := outcomeErr(result); err != nil {
				return err
			}
			fmt.Println("Registered and logged in.")
			return nil
		},
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Clear stored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := application.auth.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}

	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the user profile (cached value first when available)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var failure *executor.Error
			err := withStatus(plain, "Fetching profile", func() error {
				for result := range application.profile.Stats(cmd.Context()) {
					if result.IsError() {
						failure = result.Err()
						continue
					}
					profile := result.Data()
					fmt.Printf("%s (%s, %d) height %.1f weight %.1f goal %s\n",
						profile.Username, profile.Sex, profile.Age, profile.Height, profile.Weight, profile.Goal)
				}
				if failure != nil {
					return errors.New(failure.Message)
				}
				return nil
			})
			return err
		},
	}

	createProfileCmd := &cobra.Command{
		Use:   "create-profile",
		Short: "Submit the initial user profile",
	}
	var (
		cpUsername string
		cpAge      int
		cpHeight   float64
		cpWeight   float64
		cpSex      string
		cpGoal     string
	)
	createProfileCmd.Flags().StringVar(&cpUsername, "username", "", "Username")
	createProfileCmd.Flags().IntVar(&cpAge, "age", 0, "Age in years")
	createProfileCmd.Flags().Float64Var(&cpHeight, "height", 0, "Height in cm")
	createProfileCmd.Flags().Float64Var(&cpWeight, "weight", 0, "Weight in kg")
	createProfileCmd.Flags().StringVar(&cpSex, "sex", "", "Sex")
	createProfileCmd.Flags().StringVar(&cpGoal, "goal", "", "Fitness goal")
	createProfileCmd.RunE = func(cmd *cobra.Command, args []string) error {
		request := models.CreateProfileRequest{
			Username: cpUsername,
			Age:      cpAge,
			Height:   cpHeight,
			Weight:   cpWeight,
			Sex:      cpSex,
			Time:     utils.FormatDateTime(time.Now()),
			Goal:     cpGoal,
		}
		result := application.auth.CreateProfile(cmd.Context(), request)
		if err := outcomeErr(result); err != nil {
			return err
		}
		fmt.Println(result.Data().Message)
		return nil
	}

	caloriesCmd := &cobra.Command{
		Use:   "calories",
		Short: "Show total calories for a range",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseRange(fromFlag, toFlag, days)
			if err != nil {
				return err
			}
			var result executor.Outcome[int]
			err = withStatus(plain, "Fetching calories", func() error {
				result = application.calories.TotalForRange(cmd.Context(), from, to)
				return outcomeErr(result)
			})
			if err != nil {
				return err
			}
			fmt.Printf("Total calories: %d\n", result.Data())
			return nil
		},
	}

	caloriesDailyCmd := &cobra.Command{
		Use:   "daily",
		Short: "Show calories bucketed per day",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseRange(fromFlag, toFlag, days)
			if err != nil {
				return err
			}
			var result executor.Outcome[[]services.DailyTotal]
			err = withStatus(plain, "Fetching calories", func() error {
				result = application.calories.DailyTotals(cmd.Context(), from, to)
				return outcomeErr(result)
			})
			if err != nil {
				return err
			}
			for _, bucket := range result.Data() {
				fmt.Printf("%s  %d\n", bucket.Day.Format(dateLayout), bucket.Value)
			}
			return nil
		},
	}
	caloriesCmd.AddCommand(caloriesDailyCmd)

	var macroKind string
	macrosCmd := &cobra.Command{
		Use:   "macros",
		Short: "Show a macro total for a range",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseRange(fromFlag, toFlag, days)
			if err != nil {
				return err
			}
			var result executor.Outcome[int]
			err = withStatus(plain, "Fetching macros", func() error {
				switch macroKind {
				case "protein":
					result = application.macros.ProteinForRange(cmd.Context(), from, to)
				case "fat":
					result = application.macros.FatForRange(cmd.Context(), from, to)
				case "carbs":
					result = application.macros.CarbsForRange(cmd.Context(), from, to)
				default:
					return fmt.Errorf("unknown macro kind: %s (want protein, fat or carbs)", macroKind)
				}
				return outcomeErr(result)
			})
			if err != nil {
				return err
			}
			fmt.Printf("Total %s: %d\n", macroKind, result.Data())
			return nil
		},
	}
	macrosCmd.Flags().StringVar(&macroKind, "kind", "protein", "Macro to total: protein, fat or carbs")

	mealsCmd := &cobra.Command{
		Use:   "meals",
		Short: "List consumed products for a range, grouped by meal time",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseRange(fromFlag, toFlag, days)
			if err != nil {
				return err
			}
			var result executor.Outcome[models.MealStats]
			err = withStatus(plain, "Fetching meals", func() error {
				result = application.meals.ProductsForRange(cmd.Context(), from, to)
				return outcomeErr(result)
			})
			if err != nil {
				return err
			}
			grouped, err := services.GroupByMealTime(result.Data().Stats)
			if err != nil {
				return err
			}
			printMealSection("Breakfast", grouped.Breakfast)
			printMealSection("Lunch", grouped.Lunch)
			printMealSection("Snacks", grouped.Snacks)
			printMealSection("Dinner", grouped.Dinner)
			return nil
		},
	}

	searchCmd := &cobra.Command{
		Use:   "search <name>",
		Short: "Search catalog products by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result executor.Outcome[[]models.Product]
			err := withStatus(plain, "Searching products", func() error {
				result = application.meals.SearchByName(cmd.Context(), args[0])
				return outcomeErr(result)
			})
			if err != nil {
				return err
			}
			products := result.Data()
			if len(products) == 0 {
				fmt.Println("No products found.")
				return nil
			}
			for _, product := range products {
				fmt.Printf("#%d %s  %d kcal  B %.1f Z %.1f U %.1f  per %dg\n",
					product.ID, product.Name, product.Calories, product.Proteins, product.Fats, product.Carbs, product.Mass)
			}
			return nil
		},
	}

	barcodeCmd := &cobra.Command{
		Use:   "barcode <code>",
		Short: "Look up a product by barcode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result executor.Outcome[models.Product]
			err := withStatus(plain, "Looking up barcode", func() error {
				result = application.meals.ProductByBarcode(cmd.Context(), args[0])
				return outcomeErr(result)
			})
			if err != nil {
				return err
			}
			product := result.Data()
			fmt.Printf("#%d %s  %d kcal  B %.1f Z %.1f U %.1f  per %dg\n",
				product.ID, product.Name, product.Calories, product.Proteins, product.Fats, product.Carbs, product.Mass)
			return nil
		},
	}

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Read barcodes from stdin and look them up, debouncing repeats",
		RunE: func(cmd *cobra.Command, args []string) error {
			gate := scanner.NewScanGate(0)
			lines := bufio.NewScanner(os.Stdin)
			for lines.Scan() {
				code := strings.TrimSpace(lines.Text())
				if code == "" {
					continue
				}
				if !gate.Admit(code) {
					continue
				}
				result := application.meals.ProductByBarcode(cmd.Context(), code)
				if result.IsError() {
					fmt.Fprintf(os.Stderr, "%s: %s\n", code, result.Err().Message)
					continue
				}
				product := result.Data()
				fmt.Printf("#%d %s  %d kcal  B %.1f Z %.1f U %.1f  per %dg\n",
					product.ID, product.Name, product.Calories, product.Proteins, product.Fats, product.Carbs, product.Mass)
			}
			return lines.Err()
		},
	}

	productCmd := &cobra.Command{
		Use:   "product",
		Short: "Manage catalog products and consumption",
	}

	var (
		addName     string
		addBarcode  int64
		addCalories int
		addProtein  float64
		addFat      float64
		addCarbs    float64
		addMass     int
	)
	productAddCmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new product in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			product := models.Product{
				Name:     addName,
				Barcode:  addBarcode,
				Calories: addCalories,
				Proteins: addProtein,
				Fats:     addFat,
				Carbs:    addCarbs,
				Mass:     addMass,
			}
			result := application.meals.AddProduct(cmd.Context(), product)
			if err := outcomeErr(result); err != nil {
				return err
			}
			fmt.Println("Product added.")
			return nil
		},
	}
	productAddCmd.Flags().StringVar(&addName, "name", "", "Product name")
	productAddCmd.Flags().Int64Var(&addBarcode, "bcode", 0, "Barcode")
	productAddCmd.Flags().IntVar(&addCalories, "calories", 0, "Calories per serving mass")
	productAddCmd.Flags().Float64Var(&addProtein, "protein", 0, "Proteins in grams")
	productAddCmd.Flags().Float64Var(&addFat, "fat", 0, "Fats in grams")
	productAddCmd.Flags().Float64Var(&addCarbs, "carbs", 0, "Carbs in grams")
	productAddCmd.Flags().IntVar(&addMass, "mass", 0, "Serving mass in grams")

	var (
		consumeID   int
		consumeMass int
	)
	productConsumeCmd := &cobra.Command{
		Use:   "consume",
		Short: "Record a consumed mass of a known product",
		RunE: func(cmd *cobra.Command, args []string) error {
			request := models.ConsumeRequest{
				ProductID:    consumeID,
				Time:         utils.FormatDateTime(time.Now()),
				MassConsumed: consumeMass,
			}
			result := application.meals.ConsumeProduct(cmd.Context(), request)
			if err := outcomeErr(result); err != nil {
				return err
			}
			fmt.Println("Recorded.")
			return nil
		},
	}
	productConsumeCmd.Flags().IntVar(&consumeID, "id", 0, "Product id")
	productConsumeCmd.Flags().IntVar(&consumeMass, "mass", 0, "Consumed mass in grams")

	productCmd.AddCommand(productAddCmd)
	productCmd.AddCommand(productConsumeCmd)

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or change client settings",
	}
	configShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Base URL:      %s\n", application.cfg.BaseURL)
			fmt.Printf("Poll interval: %s\n", application.cfg.PollInterval)
			fmt.Printf("Poll timeout:  %s\n", application.cfg.PollTimeout)
			return nil
		},
	}
	configSetURLCmd := &cobra.Command{
		Use:   "set-url <url>",
		Short: "Persist a server base URL override",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := application.settings.SaveBaseURL(args[0]); err != nil {
				return err
			}
			fmt.Printf("Base URL set to %s\n", args[0])
			return nil
		},
	}
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetURLCmd)

	for _, cmd := range []*cobra.Command{caloriesCmd, macrosCmd, mealsCmd} {
		cmd.PersistentFlags().StringVar(&fromFlag, "from", "", "Range start date (YYYY-MM-DD)")
		cmd.PersistentFlags().StringVar(&toFlag, "to", "", "Range end date (YYYY-MM-DD)")
		cmd.PersistentFlags().IntVar(&days, "days", 1, "Number of days back from today when --from/--to are unset")
	}

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, profileCmd, createProfileCmd,
		caloriesCmd, macrosCmd, mealsCmd, searchCmd, barcodeCmd, scanCmd, productCmd, configCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Fatal("%v", err)
	}
}

func printMealSection(title string, items []models.MealItem) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("%s:\n", title)
	for _, item := range items {
		fmt.Printf("  %s  %s  %d kcal  %dg\n", item.Time, item.Name, item.Calories, item.MassConsumed)
	}
}
