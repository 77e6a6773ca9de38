// zcash-tsign CLI - transparent transaction signer
//
// Signs transparent (P2PKH) inputs of Zcash-derived transactions with keys
// held in a local encrypted keystore or supplied directly as WIF. The
// private key never leaves the process.
//
// Example usage:
//
//	# Sign a 2-input transaction with a WIF
//	zcash-tsign sign --wif <wif> --tx <hex> \
//	    --input <prevScriptHex>:<amount> --input <prevScriptHex>:<amount>
//
//	# Sign with a stored wallet (passphrase read from stdin)
//	zcash-tsign sign --wallet alice --store wallets.db --tx <hex> \
//	    --input <prevScriptHex>:<amount>
//
//	# Inspect a raw transaction
//	zcash-tsign decode --tx <hex>
//
//	# Compute a transaction ID
//	zcash-tsign txid --tx <hex>
package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/suffix-labs/zcash-tsign/pkg/api"
	"github.com/suffix-labs/zcash-tsign/pkg/chain"
	"github.com/suffix-labs/zcash-tsign/pkg/keystore"
	"github.com/suffix-labs/zcash-tsign/pkg/signer"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "sign":
		cmdSign(os.Args[2:])
	case "txid":
		cmdTxid(os.Args[2:])
	case "decode":
		cmdDecode(os.Args[2:])
	case "wallet":
		cmdWallet(os.Args[2:])
	case "version":
		cmdVersion()
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`zcash-tsign - transparent transaction signer

Usage:
  zcash-tsign <command> [options]

Commands:
  sign      Sign the transparent inputs of a raw transaction
  txid      Compute the transaction ID of a raw transaction
  decode    Pretty-print a raw transaction
  wallet    Manage the local keystore (create|import|list|show|delete)
  version   Show version information
  help      Show this help message

Common options:
  --network <name>     mainnet (default) or testnet
  --params <file>      YAML file with custom chain parameters

Run a command without arguments for command-specific options.`)
}

func cmdVersion() {
	fmt.Println("zcash-tsign v0.2.0")
	fmt.Println("Overwinter/Sapling transparent transaction signer")
}

// inputList collects repeated --input flags of the form <scriptHex>:<amount>.
type inputList []signer.InputDescriptor

func (l *inputList) String() string { return fmt.Sprintf("%d inputs", len(*l)) }

func (l *inputList) Set(value string) error {
	idx := strings.LastIndex(value, ":")
	if idx < 0 {
		return fmt.Errorf("expected <prevScriptHex>:<amount>, got %q", value)
	}
	scriptHex := value[:idx]
	if _, err := hex.DecodeString(scriptHex); err != nil {
		return fmt.Errorf("invalid script hex: %w", err)
	}
	amount, err := strconv.ParseInt(value[idx+1:], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	*l = append(*l, signer.InputDescriptor{PrevScriptHex: scriptHex, Amount: amount})
	return nil
}

// resolveParams picks chain parameters from --params or --network.
func resolveParams(network, paramsFile string) (*chain.Params, error) {
	if paramsFile != "" {
		return chain.LoadParams(paramsFile)
	}
	return chain.ByName(network)
}

func cmdSign(args []string) {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	network := fs.String("network", "mainnet", "network name")
	paramsFile := fs.String("params", "", "custom chain params YAML")
	wif := fs.String("wif", "", "WIF-encoded private key")
	wallet := fs.String("wallet", "", "wallet name in the keystore")
	storePath := fs.String("store", "wallets.db", "keystore database path")
	txHex := fs.String("tx", "", "unsigned transaction hex")
	var inputs inputList
	fs.Var(&inputs, "input", "<prevScriptHex>:<amount>, once per input")
	fs.Parse(args)

	if *txHex == "" || len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: --tx and at least one --input are required")
		os.Exit(1)
	}
	if (*wif == "") == (*wallet == "") {
		fmt.Fprintln(os.Stderr, "Error: exactly one of --wif or --wallet is required")
		os.Exit(1)
	}

	params, err := resolveParams(*network, *paramsFile)
	if err != nil {
		fatal(err)
	}

	var result *signer.Result
	if *wif != "" {
		result, err = api.SignTransaction(params, *wif, *txHex, inputs)
	} else {
		store, serr := keystore.Open(*storePath)
		if serr != nil {
			fatal(serr)
		}
		defer store.Close()

		password := readPassword()
		result, err = api.SignWithWallet(store, *wallet, password, *txHex, inputs, params)
	}
	if err != nil {
		fatal(err)
	}

	fmt.Printf("txid: %s\n", result.TxID)
	fmt.Printf("hex:  %s\n", result.Hex)
}

func cmdTxid(args []string) {
	fs := flag.NewFlagSet("txid", flag.ExitOnError)
	txHex := fs.String("tx", "", "raw transaction hex")
	fs.Parse(args)

	if *txHex == "" {
		fmt.Fprintln(os.Stderr, "Error: --tx is required")
		os.Exit(1)
	}

	txid, err := api.CalculateTxid(*txHex)
	if err != nil {
		fatal(err)
	}
	fmt.Println(txid)
}

func cmdDecode(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	txHex := fs.String("tx", "", "raw transaction hex")
	fs.Parse(args)

	if *txHex == "" {
		fmt.Fprintln(os.Stderr, "Error: --tx is required")
		os.Exit(1)
	}

	t, err := api.DecodeTransaction(*txHex)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("version:        %d (overwintered=%v)\n", t.VersionNumber(), t.Overwintered())
	if t.Overwintered() {
		fmt.Printf("version group:  0x%08x\n", t.VersionGroupID)
	}
	fmt.Printf("lock time:      %d\n", t.LockTime)
	fmt.Printf("expiry height:  %d\n", t.ExpiryHeight)
	fmt.Printf("inputs (%d):\n", len(t.Inputs))
	for i, in := range t.Inputs {
		fmt.Printf("  %d: prevout %s:%d sequence 0x%08x\n", i, displayTxid(in.PrevTxID), in.PrevIndex, in.Sequence)
		fmt.Printf("     unlock script: %s\n", hex.EncodeToString(in.UnlockScript))
	}
	fmt.Printf("outputs (%d):\n", len(t.Outputs))
	for i, out := range t.Outputs {
		fmt.Printf("  %d: value %d\n", i, out.Value)
		fmt.Printf("     lock script: %s\n", hex.EncodeToString(out.LockScript))
	}
}

func cmdWallet(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: zcash-tsign wallet <create|import|list|show|delete> [options]")
		os.Exit(1)
	}

	sub := args[0]
	fs := flag.NewFlagSet("wallet "+sub, flag.ExitOnError)
	network := fs.String("network", "mainnet", "network name")
	paramsFile := fs.String("params", "", "custom chain params YAML")
	storePath := fs.String("store", "wallets.db", "keystore database path")
	name := fs.String("name", "", "wallet name")
	wif := fs.String("wif", "", "WIF-encoded private key (import)")
	fs.Parse(args[1:])

	store, err := keystore.Open(*storePath)
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	switch sub {
	case "create":
		if *name == "" {
			fmt.Fprintln(os.Stderr, "Error: --name is required")
			os.Exit(1)
		}
		params, err := resolveParams(*network, *paramsFile)
		if err != nil {
			fatal(err)
		}
		password := readPassword()
		rec, err := api.NewWallet(store, *name, password, params)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("created wallet %q (%s on %s)\n", rec.Name, rec.Address, rec.Network)
	case "import":
		if *name == "" || *wif == "" {
			fmt.Fprintln(os.Stderr, "Error: --name and --wif are required")
			os.Exit(1)
		}
		params, err := resolveParams(*network, *paramsFile)
		if err != nil {
			fatal(err)
		}
		password := readPassword()
		rec, err := api.ImportWallet(store, *name, *wif, password, params)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("imported wallet %q (%s on %s)\n", rec.Name, rec.Address, rec.Network)
	case "list":
		records, err := store.ListWallets()
		if err != nil {
			fatal(err)
		}
		for _, rec := range records {
			fmt.Printf("%s\t%s\t%s\n", rec.Name, rec.Address, rec.Network)
		}
	case "show":
		if *name == "" {
			fmt.Fprintln(os.Stderr, "Error: --name is required")
			os.Exit(1)
		}
		rec, err := store.GetWallet(*name)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("name:    %s\naddress: %s\nnetwork: %s\ncreated: %s\n",
			rec.Name, rec.Address, rec.Network, rec.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	case "delete":
		if *name == "" {
			fmt.Fprintln(os.Stderr, "Error: --name is required")
			os.Exit(1)
		}
		if err := store.DeleteWallet(*name); err != nil {
			fatal(err)
		}
		fmt.Printf("deleted wallet %q\n", *name)
	default:
		fmt.Fprintf(os.Stderr, "Unknown wallet subcommand: %s\n", sub)
		os.Exit(1)
	}
}

// readPassword reads the keystore passphrase from stdin.
func readPassword() string {
	fmt.Fprint(os.Stderr, "Passphrase: ")
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

// displayTxid renders a wire-order txid in display byte order.
func displayTxid(id [32]byte) string {
	reversed := make([]byte, len(id))
	for i, b := range id {
		reversed[len(id)-1-i] = b
	}
	return hex.EncodeToString(reversed)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
