// Copyright © 2020-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the run configuration in YAML format",
	Long: `Print the run configuration in YAML format

Without -c/--config, the built-in defaults are printed, which can be
edited and passed to other commands via -c/--config.

Paths of record_store, taxid_source and taxdump, if empty, are taken from
environment variables TAXBIN_RECORD_DSN, TAXBIN_TAXID_DSN and TAXBIN_TAXDUMP,
which could also be set in a .env file in the working directory.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		defer opt.Close()

		cfg, err := loadConfig(opt.ConfigFile)
		checkError(err)

		data, err := cfg.Bytes()
		checkError(err)

		outFile := getFlagString(cmd, "out-file")
		outfh, gw, w, err := outStream(outFile, isGzFile(outFile), opt.CompressionLevel)
		checkError(err)
		outfh.Write(data)
		closeOutStream(outfh, gw, w)
	},
}

func init() {
	RootCmd.AddCommand(configCmd)

	configCmd.Flags().StringP("out-file", "o", "-", `out file ("-" for stdout)`)
}
