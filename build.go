//go:build ignore

// build.go - icwfixtures build system
// Usage: go run build.go [-target=TARGET]
// Targets: all, fixturegen, fixturecheck, fixtures, check, clean, test, bench

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const module = "icwfixtures"

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	Race    bool
}

var (
	rootDir string
	distDir string

	// Executable names (key = source dir name, value = output name)
	executables = map[string]string{
		"fixturegen":   "fixturegen",
		"fixturecheck": "fixturecheck",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); os.IsNotExist(err) {
		panic(fmt.Sprintf("go.mod not found in %s. Run the build from the module root.", rootDir))
	}
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	race := flag.Bool("race", false, "Run tests with the race detector")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	ctx := &BuildContext{Verbose: *verbose, Race: *race}

	switch *target {
	case "all":
		buildAll(ctx)
	case "fixturegen", "fixturecheck":
		buildExecutable(*target, ctx)
	case "fixtures":
		generateFixtures(ctx)
	case "check":
		generateFixtures(ctx)
		checkFixtures(ctx)
	case "clean":
		clean(ctx.Verbose)
	case "test":
		runTests(ctx)
	case "bench":
		runBenchmarks(ctx)
	default:
		showHelp()
		os.Exit(1)
	}

	duration := time.Since(startTime)
	printSuccess(fmt.Sprintf("Build completed in %s", duration.Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "        icwfixtures - Build System         " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

// Build all executables
func buildAll(ctx *BuildContext) {
	printInfo("Building all executables...")

	if err := os.MkdirAll(distDir, 0755); err != nil {
		printError(fmt.Sprintf("Failed to create dist directory: %v", err))
		os.Exit(1)
	}

	for name := range executables {
		buildExecutable(name, ctx)
	}

	printSuccess("All executables built successfully!")
}

// ldflags stamps version information into pkg/contracts
func ldflags() string {
	pkg := module + "/pkg/contracts"
	flags := []string{
		"-s", "-w",
		fmt.Sprintf("-X %s.BuildTime=%s", pkg, time.Now().UTC().Format(time.RFC3339)),
	}
	if commit := gitOutput("rev-parse", "--short", "HEAD"); commit != "" {
		flags = append(flags, fmt.Sprintf("-X %s.GitCommit=%s", pkg, commit))
	}
	if branch := gitOutput("rev-parse", "--abbrev-ref", "HEAD"); branch != "" {
		flags = append(flags, fmt.Sprintf("-X %s.GitBranch=%s", pkg, branch))
	}
	return strings.Join(flags, " ")
}

func gitOutput(args ...string) string {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func executablePath(name string) string {
	exe := executables[name]
	if runtime.GOOS == "windows" {
		exe += ".exe"
	}
	return filepath.Join(distDir, exe)
}

// Build a specific executable
func buildExecutable(name string, ctx *BuildContext) {
	if _, ok := executables[name]; !ok {
		printError(fmt.Sprintf("Unknown executable: %s", name))
		os.Exit(1)
	}

	printInfo(fmt.Sprintf("Building %s...", name))

	outputPath := executablePath(name)
	args := []string{"build", "-ldflags", ldflags(), "-o", outputPath, "./cmd/" + name}
	if ctx.Verbose {
		args = append([]string{"build", "-v"}, args[1:]...)
	}

	if err := runGo(ctx.Verbose, args...); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", filepath.Base(outputPath), sizeMB))
	}
}

// Generate the reference fixtures into dist/fixtures
func generateFixtures(ctx *BuildContext) {
	buildExecutable("fixturegen", ctx)

	outDir := filepath.Join(distDir, "fixtures")
	printInfo(fmt.Sprintf("Generating fixtures in %s...", outDir))

	cmd := exec.Command(executablePath("fixturegen"))
	cmd.Env = append(os.Environ(), "ICW_OUTPUT_DIR="+outDir)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Fixture generation failed: %v", err))
		os.Exit(1)
	}
}

// Validate the fixtures in dist/fixtures
func checkFixtures(ctx *BuildContext) {
	buildExecutable("fixturecheck", ctx)

	cmd := exec.Command(executablePath("fixturecheck"), "-dir", filepath.Join(distDir, "fixtures"))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Fixture validation failed: %v", err))
		os.Exit(1)
	}
}

func clean(verbose bool) {
	printInfo("Cleaning build artifacts...")

	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean dist directory: %v", err))
		return
	}
	if verbose {
		printInfo(fmt.Sprintf("Removed %s", distDir))
	}

	printSuccess("Build artifacts cleaned")
}

// Run tests
func runTests(ctx *BuildContext) {
	printInfo("Running Go tests...")

	args := []string{"test"}
	if ctx.Race {
		args = append(args, "-race")
	}
	if ctx.Verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	if err := runGo(true, args...); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}

	printSuccess("All tests passed")
}

func runBenchmarks(ctx *BuildContext) {
	printInfo("Running benchmarks...")
	if !ctx.Verbose {
		printWarning("Benchmarks generate the full reference dataset and take a while")
	}

	if err := runGo(true, "test", "-run", "^$", "-bench", ".", "-benchmem", "./internal/performance"); err != nil {
		printError(fmt.Sprintf("Benchmarks failed: %v", err))
		os.Exit(1)
	}
}

func runGo(stream bool, args ...string) error {
	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	if stream {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	return cmd.Run()
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v] [-race]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all               Build fixturegen and fixturecheck (default)")
	fmt.Println("  fixturegen        Build the generator only")
	fmt.Println("  fixturecheck      Build the validator only")
	fmt.Println("  fixtures          Generate the reference fixtures into dist/fixtures")
	fmt.Println("  check             Generate and validate the reference fixtures")
	fmt.Println("  clean             Remove dist/")
	fmt.Println("  test              Run all tests")
	fmt.Println("  bench             Run the performance benchmarks")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -v                Verbose output")
	fmt.Println("  -race             Run tests with the race detector")
}
