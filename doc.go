// SPDX-License-Identifier: MIT
// Source: github.com/lisamanaa189-commits/animated-fortnight

/*
Package pak reads Unreal Engine PAK archives: footer discovery, index
parsing, and reconstruction of file contents from raw, chunked, or
compressed byte ranges. Encrypted archives are detected and reported but
never decrypted, and writing PAK files is out of scope.

# Reading

Open an archive and list or read entries:

	r, err := pak.Open("game.pak")
	if err != nil {
	    return err
	}
	defer r.Close()
	for _, e := range r.Entries() {
	    data, _ := r.ReadEntry(e.Path)
	    // use data
	}

For metadata-only scans, use fast helpers without keeping a reader:

	info, err := pak.ReadArchiveInfo("game.pak")
	if err != nil {
	    return err
	}
	entries, err := pak.ListEntries("game.pak")
	if err != nil {
	    return err
	}
	_, _ = info, entries

Entry selection accepts a path prefix or ordered include/exclude rules
(github.com/woozymasta/pathrules):

	r, err := pak.OpenWithOptions("game.pak", pak.ReaderOptions{
	    PathPrefix: "Content/Textures",
	    Rules: []pathrules.Rule{
	        {Action: pathrules.ActionInclude, Pattern: "*.uasset"},
	    },
	})

# Extracting

Extract entries to a directory (parallel workers, per-entry outcomes):

	outcomes, err := r.Extract(ctx, "out/", pak.ExtractOptions{MaxWorkers: 4})
	if err != nil {
	    return err
	}
	for _, o := range outcomes {
	    if o.Err != nil {
	        // one entry failed; the batch kept going
	    }
	}

Compressed entries are inflated with zlib, gzip, or Oodle depending on the
stored method code. Unknown codes pass through unmodified so that new
engine codecs degrade to raw output instead of failing extraction.
*/
package pak
