/*
Package atomicfile replaces a file so that a crash or an error in the middle
of writing never leaves a truncated or half-written file behind.

Data goes to a temporary file in the destination's directory. Close syncs it
and renames it over the destination. If anything failed before that, the
temporary file is deleted and the destination is left as it was.

	func saveJSON(path string, d []byte) error {
		f, err := atomicfile.New(path)
		if err != nil {
			return err
		}
		// no-op if Close() was called
		defer f.RemoveIfNotClosed()

		if _, err = f.Write(d); err != nil {
			return err
		}
		return f.Close()
	}

WriteFile does the above in one call.
*/
package atomicfile
