package docqa

import (
	"fmt"
	"os"
)

// Execute is the main entry point for the CLI
func Execute() error {
	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" {
		printUsage()
		if len(os.Args) < 2 {
			return fmt.Errorf("no command provided")
		}
		return nil
	}

	command := os.Args[1]
	switch command {
	case "chat":
		return handleChatCommand(os.Args[2:])
	case "status":
		return handleStatusCommand(os.Args[2:])
	case "upload":
		return handleUploadCommand(os.Args[2:])
	case "ask":
		return handleAskCommand(os.Args[2:])
	case "reset":
		return handleResetCommand(os.Args[2:])
	case "watch":
		return handleWatchCommand(os.Args[2:])
	case "serve":
		return handleServeCommand(os.Args[2:])
	case "setup":
		return handleSetupCommand()
	case "config":
		return handleConfigCommand(os.Args[2:])
	case "version", "--version":
		printVersion()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage() {
	fmt.Println("usage: docqa [-h] {chat,status,upload,ask,reset,watch,serve,setup,config,version} ...")
	fmt.Println("")
	fmt.Println("positional arguments:")
	fmt.Println("  {chat,status,upload,ask,reset,watch,serve,setup,config,version}")
	fmt.Println("                        DocQA CLI commands")
	fmt.Println("    chat                Chat with a document in the terminal")
	fmt.Println("    status              Show the document loaded in the backend")
	fmt.Println("    upload              Upload a document")
	fmt.Println("    ask                 Ask one question about the loaded document")
	fmt.Println("    reset               Clear the loaded document")
	fmt.Println("    watch               Re-upload a document whenever it changes")
	fmt.Println("    serve               Run the document QA backend")
	fmt.Println("    setup               Run interactive setup")
	fmt.Println("    config              Manage configuration")
	fmt.Println("    version             Show version information")
	fmt.Println("")
	fmt.Println("options:")
	fmt.Println("  -h, --help            show this help message and exit")
}
