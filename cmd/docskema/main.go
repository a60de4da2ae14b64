// Command docskema emits descriptors for, generates mock documents from and
// validates data against schema definition files.
package main

func main() {
	Execute()
}
