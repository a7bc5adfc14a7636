// Package nexus is a client for the content API of Sonatype Nexus 2
// repositories.
//
// Besides single-file transfers it walks whole remote trees: directories are
// listed one level at a time by a bounded pool of concurrent fetches, and the
// entries are delivered to a caller-supplied sink from a single goroutine.
// Tree transfers are fail-soft; every file is attempted and the failures are
// reported together.
//
// Example:
//
//	client, err := nexus.New(
//	    nexus.WithBaseURL("https://repo.example.com/nexus"),
//	    nexus.WithCredentials("deployer", secret),
//	)
//	if err != nil {
//	    return err
//	}
//
//	result, err := client.DownloadTree(ctx, "releases", "/org/acme/", "/tmp/acme")
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%d files transferred\n", result.Transferred)
package nexus
