package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/harshvardha/distributed_file_system/client"
	"github.com/harshvardha/distributed_file_system/common"
	"github.com/harshvardha/distributed_file_system/config"
	"github.com/harshvardha/distributed_file_system/logging"
)

func main() {
	var (
		masterAddr string
		clientID   string
		x, y       float64
		configPath string
		dev        bool
	)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	uploadCmd := flag.NewFlagSet("upload", flag.ExitOnError)
	uploadFile := uploadCmd.String("file", "", "Local file path to upload")
	uploadName := uploadCmd.String("name", "", "Remote file name")

	downloadCmd := flag.NewFlagSet("download", flag.ExitOnError)
	downloadName := downloadCmd.String("name", "", "Remote file name to download")
	downloadOutput := downloadCmd.String("output", "", "Local output file path")

	appendCmd := flag.NewFlagSet("append", flag.ExitOnError)
	appendName := appendCmd.String("name", "", "Remote file name to append to")
	appendFile := appendCmd.String("file", "", "Local file whose contents are appended")

	listCmd := flag.NewFlagSet("list", flag.ExitOnError)

	sub := os.Args[1]
	for _, fs := range []*flag.FlagSet{uploadCmd, downloadCmd, appendCmd, listCmd} {
		fs.StringVar(&masterAddr, "master", common.DefaultMasterAddress, "Master server address")
		fs.StringVar(&clientID, "client-id", "", "Client identifier (defaults to a timestamp-derived ID)")
		fs.Float64Var(&x, "x", 0, "Client X coordinate (placement hint)")
		fs.Float64Var(&y, "y", 0, "Client Y coordinate (placement hint)")
		fs.StringVar(&configPath, "config", "", "Path to TOML configuration file")
		fs.BoolVar(&dev, "dev", false, "Use human-readable development logging")
	}

	switch sub {
	case "upload":
		uploadCmd.Parse(os.Args[2:])
	case "download":
		downloadCmd.Parse(os.Args[2:])
	case "append":
		appendCmd.Parse(os.Args[2:])
	case "list":
		listCmd.Parse(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}

	if dev {
		logging.SetDevelopment()
	}
	log := logging.Get("client.main")

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	dfsClient, err := client.NewClient(masterAddr, clientID, x, y, cfg.Client.UploadChunkSize)
	if err != nil {
		log.Fatalw("failed to create client", "error", err)
	}
	defer dfsClient.Close()

	switch sub {
	case "upload":
		if *uploadFile == "" || *uploadName == "" {
			uploadCmd.PrintDefaults()
			os.Exit(1)
		}
		if err := dfsClient.UploadFile(*uploadFile, *uploadName); err != nil {
			log.Fatalw("upload failed", "error", err)
		}
		fmt.Printf("Successfully uploaded: %s\n", *uploadName)

	case "download":
		if *downloadName == "" || *downloadOutput == "" {
			downloadCmd.PrintDefaults()
			os.Exit(1)
		}
		if err := dfsClient.DownloadFile(*downloadName, *downloadOutput); err != nil {
			log.Fatalw("download failed", "error", err)
		}
		fmt.Printf("Successfully downloaded to: %s\n", *downloadOutput)

	case "append":
		if *appendName == "" || *appendFile == "" {
			appendCmd.PrintDefaults()
			os.Exit(1)
		}
		data, err := os.ReadFile(*appendFile)
		if err != nil {
			log.Fatalw("failed to read append source file", "error", err)
		}
		if err := dfsClient.AppendToFile(*appendName, data); err != nil {
			log.Fatalw("append failed", "error", err)
		}
		fmt.Printf("Successfully appended to: %s\n", *appendName)

	case "list":
		files, err := dfsClient.ListFiles()
		if err != nil {
			log.Fatalw("list failed", "error", err)
		}
		if len(files) == 0 {
			fmt.Println("No files in the system")
		} else {
			fmt.Printf("Files in DFS (%d total):\n", len(files))
			fmt.Println("----------------------------------------")
			for _, f := range files {
				fmt.Println(f)
			}
		}
	}
}

func printUsage() {
	fmt.Println("Distributed File System Client")
	fmt.Println("\nUsage:")
	fmt.Println("	client upload -file <local_path> -name <remote_name>")
	fmt.Println("	client download -name <remote_name> -output <local_path>")
	fmt.Println("	client append -name <remote_name> -file <local_path>")
	fmt.Println("	client list")
	fmt.Println("\nExamples:")
	fmt.Println("	client upload -file ./test.txt -name myfile.txt")
	fmt.Println("	client download -name myfile.txt -output ./downloaded.txt")
	fmt.Println("	client list")
}
