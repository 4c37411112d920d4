// Package backup lists, filters and restores database backup files.
//
// Backups are files named <stem>.bak, optionally followed by a compression
// suffix (.gz, .lz4 or .zst) and an encryption suffix (.enc). A Store lists
// and opens them on one backend: a local directory, Amazon S3, Google Cloud
// Storage or Azure Blob Storage.
//
// Example usage:
//
//	store, err := backup.NewStore(ctx, storageConfig)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	criteria, err := backup.ParseCriteria("2023-02-11", "2023-04-01", "/.*50_Percent.*/", time.Local)
//	if err != nil {
//		return err
//	}
//
//	all, err := store.List(ctx)
//	if err != nil {
//		return err
//	}
//	for _, d := range backup.Filter(all, criteria) {
//		fmt.Println(d.Name)
//	}
//
// Restoring decodes the file and hands the SQL script to a ScriptExecutor:
//
//	restorer := backup.NewRestorer(store, backup.NewDecoder(passphrase), executor, logger)
//	err = restorer.Restore(ctx, "nightly_2023-03-01.bak.gz")
package backup
