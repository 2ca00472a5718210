// Package cli is responsible for parsing command-line arguments with cobra,
// validating user input, and handling process-level concerns like exit
// codes. It translates flags into the application's internal configuration;
// the pipelines themselves are not configurable from the command line.
package cli
