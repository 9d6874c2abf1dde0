// Package nb2medium converts Jupyter notebooks to Medium-ready markdown and
// publishes them as drafts.
//
// # Quick Start
//
// Create a converter, convert a notebook, and close when done:
//
//	conv, err := nb2medium.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.ConvertFile(ctx, "analysis.ipynb", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Markdown)
//
// The result holds the markdown and every image it references by name
// (result.Images). Use SaveMarkdown to write both next to the notebook.
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. LaTeX cells: a markdown cell holding only a display formula becomes an image
//  2. Markdown cells: local, remote and attached images get stable names,
//     markdown tables become images
//  3. Outputs: rich outputs collapse to one representation, styled HTML tables
//     become images
//  4. Export to markdown, with .jpeg extensions restored
//  5. Optionally, long code blocks move to GitHub gists
//
// # Tables
//
// Tables are rendered by a headless browser (the default) or painted
// in-process by the plot strategy, which needs no browser:
//
//	conv, err := nb2medium.NewConverter(
//	    nb2medium.WithTableConversion(nb2medium.TableConversionPlot),
//	    nb2medium.WithTableFontSize(18),
//	)
//
// # Gists
//
// Code blocks longer than a threshold can be moved to gists:
//
//	token, err := nb2medium.ResolveGistToken("")
//	conv, err := nb2medium.NewConverter(
//	    nb2medium.WithGist(nb2medium.NewGistClient(token), nb2medium.GistOptions{
//	        Threshold: nb2medium.DefaultGistThreshold,
//	        Public:    true,
//	    }),
//	)
//
// # Publishing
//
// A Publisher uploads the images and creates a draft post:
//
//	token, err := nb2medium.ResolveMediumToken("")
//	pub := nb2medium.NewPublisher(nb2medium.NewMediumClient(token))
//	post, err := pub.Publish(ctx, result, nb2medium.PublishOptions{
//	    Tags: []string{"python"},
//	})
//	fmt.Println(post.URL)
//
// # Parallel Processing
//
// For batch conversion, use ConverterPool:
//
//	pool := nb2medium.NewConverterPool(nb2medium.ResolvePoolSize(0))
//	defer pool.Close()
//
//	conv, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//	result, err := conv.ConvertFile(ctx, path, "")
//
// # Error Handling
//
// Errors can be checked with errors.Is():
//
//	if errors.Is(err, nb2medium.ErrBrowserNotFound) {
//	    // install a browser or use the plot strategy
//	}
package nb2medium
